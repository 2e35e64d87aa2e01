package repository

import "timeclock.kiosk/internal/ports/table"

// Column names as they appear in the header row of each table.
const (
	colEmployeeID      = "id empleado"
	colFullName        = "nombre completo"
	colAge             = "edad"
	colTitle           = "cargo"
	colDefaultShift    = "jornada horas"
	colDate            = "fecha"
	colEntryTime       = "hora entrada"
	colShiftHours      = "jornada horas"
	colLunchStartTime  = "hora inicio almuerzo"
	colLunchEndTime    = "hora fin almuerzo"
	colExitTime        = "hora salida"
	colWorkedHours     = "horas trabajadas"
	colOvertimeMinutes = "tiempo extra minutos"
	colLunchMinutes    = "tiempo almuerzo minutos"
)

// EmployeeSchema is the employee directory table.
var EmployeeSchema = table.Schema{
	Name:    "employees",
	Columns: []string{colEmployeeID, colFullName, colAge, colTitle, colDefaultShift},
	Legacy: map[string]string{
		"id_empleado":           colEmployeeID,
		"nombre_completo":       colFullName,
		"jornada_laboral_horas": colDefaultShift,
	},
}

// RecordSchema is the daily record table.
var RecordSchema = table.Schema{
	Name: "records",
	Columns: []string{
		colEmployeeID, colFullName, colTitle, colDate, colEntryTime, colShiftHours,
		colLunchStartTime, colLunchEndTime, colExitTime,
		colWorkedHours, colOvertimeMinutes, colLunchMinutes,
	},
	Legacy: map[string]string{
		"id_empleado":             colEmployeeID,
		"nombre_completo":         colFullName,
		"hora_entrada":            colEntryTime,
		"jornada_horas":           colShiftHours,
		"jornada_laboral_horas":   colShiftHours,
		"hora_inicio_almuerzo":    colLunchStartTime,
		"hora_fin_almuerzo":       colLunchEndTime,
		"hora_salida":             colExitTime,
		"horas_trabajadas":        colWorkedHours,
		"tiempo_extra_minutos":    colOvertimeMinutes,
		"tiempo_almuerzo_minutos": colLunchMinutes,
	},
}

// Positions of each column in the conformed record table.
const (
	recEmployeeID = iota
	recFullName
	recTitle
	recDate
	recEntryTime
	recShiftHours
	recLunchStartTime
	recLunchEndTime
	recExitTime
	recWorkedHours
	recOvertimeMinutes
	recLunchMinutes
	recColumns
)

// Positions of each column in the conformed employee table.
const (
	empID = iota
	empFullName
	empAge
	empTitle
	empDefaultShift
	empColumns
)
