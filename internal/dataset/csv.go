package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"traffic-signal-optimizer-go/internal/model"
)

// Имена колонок входного и выходного CSV
const (
	ColumnDay            = "Day"
	ColumnHour           = "Hour"
	ColumnTotalVehicles  = "Total_Vehicles"
	ColumnAvgQueueLength = "Avg_Queue_Length"
	ColumnAvgDelayTime   = "Avg_Delay_Time"
	ColumnTotalCycleTime = "Total_Cycle_Time"
)

// ReadSamples читает датасет интенсивности. Колонки Hour и Total_Vehicles
// обязательны; Day по умолчанию понедельник; Signal_i_Vehicles либо по
// числу направлений топологии, либо ни одной (тогда поровну).
func ReadSamples(r io.Reader, topology model.Topology) ([]model.VolumeSample, error) {
	directionCount, err := topology.DirectionCount()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.MissingField(ColumnHour)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	hourCol, ok := idx[strings.ToLower(ColumnHour)]
	if !ok {
		return nil, model.MissingField(ColumnHour)
	}
	totalCol, ok := idx[strings.ToLower(ColumnTotalVehicles)]
	if !ok {
		return nil, model.MissingField(ColumnTotalVehicles)
	}
	dayCol, hasDay := idx[strings.ToLower(ColumnDay)]

	var signalCols []int
	for i := 1; ; i++ {
		col, ok := idx[strings.ToLower(SignalVehiclesColumn(i))]
		if !ok {
			break
		}
		signalCols = append(signalCols, col)
	}
	if len(signalCols) > 0 && len(signalCols) != directionCount {
		return nil, &model.SignalCountMismatchError{
			Topology: topology,
			Field:    "Signal_i_Vehicles columns",
			Expected: directionCount,
			Got:      len(signalCols),
		}
	}

	var samples []model.VolumeSample
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		sample := model.VolumeSample{}
		if hasDay {
			if sample.Day, err = model.ParseDay(field(record, dayCol)); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		hour, err := parseNumber(field(record, hourCol))
		if err != nil || hour != math.Trunc(hour) {
			return nil, fmt.Errorf("line %d: %w: bad hour %q", line, model.ErrInvalidSample, field(record, hourCol))
		}
		sample.Hour = int(hour)

		if sample.TotalVehicles, err = parseNumber(field(record, totalCol)); err != nil {
			return nil, fmt.Errorf("line %d: %w: bad %s %q", line, model.ErrInvalidSample, ColumnTotalVehicles, field(record, totalCol))
		}

		for _, col := range signalCols {
			v, err := parseNumber(field(record, col))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: bad %s %q", line, model.ErrInvalidSample, header[col], field(record, col))
			}
			sample.PerDirectionVehicles = append(sample.PerDirectionVehicles, v)
		}

		if err := sample.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// WritePlans пишет выходную таблицу пакетного режима
func WritePlans(w io.Writer, rows []model.PlanRow, topology model.Topology) error {
	directionCount, err := topology.DirectionCount()
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)

	header := []string{ColumnDay, ColumnHour}
	for i := 1; i <= directionCount; i++ {
		header = append(header, fmt.Sprintf("Signal_%d_Green", i))
	}
	for i := 1; i <= directionCount; i++ {
		header = append(header, fmt.Sprintf("Signal_%d_Red", i))
	}
	header = append(header, ColumnAvgQueueLength, ColumnAvgDelayTime, ColumnTotalCycleTime)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if len(row.Green) != directionCount || len(row.Red) != directionCount {
			return &model.SignalCountMismatchError{Topology: topology, Field: "output signals", Expected: directionCount, Got: len(row.Green)}
		}
		record := []string{row.Day.String(), strconv.Itoa(row.Hour)}
		for _, g := range row.Green {
			record = append(record, strconv.Itoa(g))
		}
		for _, r := range row.Red {
			record = append(record, strconv.Itoa(r))
		}
		record = append(record,
			formatFloat(row.Metrics.AvgQueueLength),
			formatFloat(row.Metrics.AvgDelayTime),
			strconv.Itoa(row.TotalCycleTime),
		)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write %s %02d:00: %w", row.Day, row.Hour, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SignalVehiclesColumn имя колонки объема по направлению (с 1)
func SignalVehiclesColumn(i int) string {
	return fmt.Sprintf("Signal_%d_Vehicles", i)
}

func field(record []string, col int) string {
	if col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func parseNumber(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
