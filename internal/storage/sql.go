package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

//go:embed indexes.sql
var initIndexesSQL string

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      device,
                      config)
VALUES (?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    device,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    device,
    config
FROM sessions
ORDER BY start_time, id`

	insertPassSQL = `
INSERT INTO passes (
                    session_id,
                    timestamp,
                    center_frequency,
                    span_start,
                    scan_step,
                    bandwidth_multiplier,
                    measured,
                    aborted,
                    peak_frequency,
                    peak_rssi,
                    peak_index,
                    bins)
VALUES `

	insertPassValuesSQL = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	insertListenSQL = `
INSERT INTO listens (
                     session_id,
                     timestamp,
                     frequency,
                     rssi,
                     retuned)
VALUES (?, ?, ?, ?, ?)`

	selectPassesSQL = `
SELECT
    timestamp,
    center_frequency,
    span_start,
    scan_step,
    bandwidth_multiplier,
    measured,
    aborted,
    peak_frequency,
    peak_rssi,
    peak_index,
    bins
FROM passes
WHERE
    session_id = ?
    AND (? IS NULL OR timestamp >= ?)
    AND (? IS NULL OR timestamp <= ?)
    AND (? = 0 OR aborted = 0)
ORDER BY timestamp, id`

	selectListensSQL = `
SELECT
    timestamp,
    frequency,
    rssi,
    retuned
FROM listens
WHERE
    session_id = ?
ORDER BY timestamp, id`
)
