package status

import (
	"sort"
	"strings"
	"time"
)

// dateToUnixMilli parses an RFC3339-ish log date for ordering purposes.
// Unparsable dates sort as the epoch rather than failing the mapping.
func dateToUnixMilli(value string) int64 {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UnixMilli()
		}
	}
	return 0
}

func mapDayLog(log DayLogRecord) DayLog {
	return DayLog{
		Date:              log.Date,
		Status:            Normalize(log.OverallStatus),
		Uptime:            log.Uptime,
		AvgResponseTimeMs: log.AvgResponseTime,
		MaxResponseTimeMs: log.MaxResponseTime,
		TotalChecks:       log.TotalChecks,
		SuccessfulChecks:  log.SuccessfulChecks,
	}
}

func mapDayLogs(logs []DayLogRecord) []DayLog {
	sorted := make([]DayLogRecord, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dateToUnixMilli(sorted[i].Date) > dateToUnixMilli(sorted[j].Date)
	})

	mapped := make([]DayLog, 0, len(sorted))
	for _, log := range sorted {
		mapped = append(mapped, mapDayLog(log))
	}
	return mapped
}

// MapComponent builds the display view of a raw component. It returns
// false for inactive components, which never appear in the view.
func MapComponent(record ComponentRecord) (Component, bool) {
	if !record.IsActive {
		return Component{}, false
	}

	dayLogs := mapDayLogs(record.HealthcheckDayLogs)

	component := Component{
		ID:                 record.ID,
		ProductID:          record.ProductID,
		Name:               record.Name,
		Type:               record.Type,
		MonitoringConfig:   record.MonitoringConfig,
		Status:             Normalize(record.CurrentStatus),
		HealthcheckDayLogs: dayLogs,
	}

	if len(dayLogs) > 0 {
		latest := dayLogs[0]
		component.LatestLogDate = &latest.Date
		component.LatestUptime = &latest.Uptime
		component.LatestAvgResponse = &latest.AvgResponseTimeMs
	}

	return component, true
}

// MapProduct builds the display view of a raw product. It returns false
// for invisible products and for products left without any active
// component after filtering.
func MapProduct(record ProductRecord) (Product, bool) {
	if !record.IsVisible {
		return Product{}, false
	}

	components := make([]Component, 0, len(record.Components))
	for _, raw := range record.Components {
		if component, ok := MapComponent(raw); ok {
			components = append(components, component)
		}
	}
	if len(components) == 0 {
		return Product{}, false
	}

	description := strings.TrimSpace(record.Description)
	if description == "" {
		description = DescriptionPlaceholder
	}

	return Product{
		ID:          record.ID,
		Name:        record.Name,
		Description: description,
		Status:      AggregateStatus(components),
		Components:  components,
	}, true
}

// MapProducts maps each record and drops the filtered ones, preserving
// input order.
func MapProducts(records []ProductRecord) []Product {
	products := make([]Product, 0, len(records))
	for _, record := range records {
		if product, ok := MapProduct(record); ok {
			products = append(products, product)
		}
	}
	return products
}
