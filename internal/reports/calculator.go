package reports

import (
	"strings"
	"time"
)

// Fixed conversion factors for environmental equivalents, applied per
// processed pound. Reported alongside every ESG summary so the display layer
// can show its assumptions.
const (
	CO2eFactorLbsPerLb    = 0.6
	WaterFactorGalPerLb   = 3.2
	EnergyFactorKWhPerLb  = 0.8
	CertificationDueAfter = 7 * 24 * time.Hour
)

// ConversionFactors are the ESG linear factors in effect.
type ConversionFactors struct {
	CO2eLbsPerLb   float64 `json:"co2eLbsPerLb"`
	WaterGalPerLb  float64 `json:"waterGalPerLb"`
	EnergyKWhPerLb float64 `json:"energyKwhPerLb"`
}

// DefaultConversionFactors returns the fixed factor set.
func DefaultConversionFactors() ConversionFactors {
	return ConversionFactors{
		CO2eLbsPerLb:   CO2eFactorLbsPerLb,
		WaterGalPerLb:  WaterFactorGalPerLb,
		EnergyKWhPerLb: EnergyFactorKWhPerLb,
	}
}

// ESGSummary holds the environmental dashboard metrics for one load cycle.
type ESGSummary struct {
	TotalProcessedWeightLbs float64           `json:"totalProcessedWeightLbs"`
	DivertedWeightLbs       float64           `json:"divertedWeightLbs"`
	DiversionRate           float64           `json:"diversionRate"`
	CO2eSavedLbs            float64           `json:"co2eSavedLbs"`
	WaterSavedGal           float64           `json:"waterSavedGal"`
	EnergySavedKWh          float64           `json:"energySavedKwh"`
	ReusedAssetCount        int64             `json:"reusedAssetCount"`
	Factors                 ConversionFactors `json:"factors"`
}

// FinancialSummary holds the financial dashboard metrics. The revenue and
// cost breakdown fields are placeholders awaiting dedicated data sources and
// always carry zero; the display layer depends on their presence.
type FinancialSummary struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalCost    float64 `json:"totalCost"`
	NetProfit    float64 `json:"netProfit"`

	ReuseRevenue    float64 `json:"reuseRevenue"`
	ResaleRevenue   float64 `json:"resaleRevenue"`
	MaterialRevenue float64 `json:"materialRevenue"`

	TransportationCost float64 `json:"transportationCost"`
	DestructionCost    float64 `json:"destructionCost"`
	LaborCost          float64 `json:"laborCost"`
}

// ComplianceSummary holds the compliance dashboard metrics. PendingAudits is
// a placeholder awaiting an audit data source and always carries zero.
type ComplianceSummary struct {
	TotalLots             int64 `json:"totalLots"`
	CertifiedLots         int64 `json:"certifiedLots"`
	OverdueCertifications int64 `json:"overdueCertifications"`
	PendingAudits         int64 `json:"pendingAudits"`
}

// TotalProcessedWeightLbs computes total processed weight with a two-tier
// fallback: per-lot processed weight (or incoming weight when processed is
// absent), and when the lot rollup sums to zero the per-material weights
// instead. Either level may be the authoritative source depending on how far
// a lot has progressed.
func TotalProcessedWeightLbs(lots []ProcessingLot, materials []ProcessedMaterial) float64 {
	total := 0.0
	for _, lot := range lots {
		total += lot.TotalProcessedWeight.Or(lot.TotalIncomingWeight)
	}
	if total != 0 {
		return total
	}

	for _, m := range materials {
		total += m.WeightLbs.Or(m.Weight)
	}
	return total
}

// ReusedAssetCount counts assets with status "Reused" or disposition
// "Reuse". Both comparisons are case-sensitive exact matches.
func ReusedAssetCount(assets []Asset) int64 {
	count := int64(0)
	for _, a := range assets {
		if a.Status == "Reused" || a.Disposition == "Reuse" {
			count++
		}
	}
	return count
}

// ComputeESGSummary derives the ESG metrics from raw records. Diverted
// weight currently equals total processed weight pending a real landfill
// split, so the rate is 1.0 whenever any weight was processed and 0 for the
// empty case.
func ComputeESGSummary(rec RawRecords) ESGSummary {
	totalWeight := TotalProcessedWeightLbs(rec.Lots, rec.Materials)
	diverted := totalWeight

	rate := 0.0
	if totalWeight > 0 {
		rate = diverted / totalWeight
	}

	return ESGSummary{
		TotalProcessedWeightLbs: totalWeight,
		DivertedWeightLbs:       diverted,
		DiversionRate:           rate,
		CO2eSavedLbs:            totalWeight * CO2eFactorLbsPerLb,
		WaterSavedGal:           totalWeight * WaterFactorGalPerLb,
		EnergySavedKWh:          totalWeight * EnergyFactorKWhPerLb,
		ReusedAssetCount:        ReusedAssetCount(rec.Assets),
		Factors:                 DefaultConversionFactors(),
	}
}

// ComputeFinancialSummary derives the financial metrics from processing
// lots. Revenue prefers actual over expected per lot; processing and
// incoming-material costs are summed independently and then added.
func ComputeFinancialSummary(rec RawRecords) FinancialSummary {
	revenue := 0.0
	processingCost := 0.0
	materialCost := 0.0
	for _, lot := range rec.Lots {
		revenue += lot.ActualRevenue.Or(lot.ExpectedRevenue)
		processingCost += lot.ProcessingCost.OrZero()
		materialCost += lot.IncomingMaterialCost.OrZero()
	}

	totalCost := processingCost + materialCost
	return FinancialSummary{
		TotalRevenue: revenue,
		TotalCost:    totalCost,
		NetProfit:    revenue - totalCost,
	}
}

// ComputeComplianceSummary derives the compliance metrics from processing
// lots as of the given instant.
func ComputeComplianceSummary(rec RawRecords, now time.Time) ComplianceSummary {
	out := ComplianceSummary{TotalLots: int64(len(rec.Lots))}
	for _, lot := range rec.Lots {
		if certificationComplete(lot.CertificationStatus) {
			out.CertifiedLots++
		}
		if CertificationOverdue(lot, now) {
			out.OverdueCertifications++
		}
	}
	return out
}

// CertificationOverdue reports whether a lot's certification is overdue: its
// status is neither completed nor complete (case-insensitive), it has a
// completion date, and either that date is more than seven days in the past
// or the status reads "overdue". A lot with no completion date is never
// flagged regardless of status.
func CertificationOverdue(lot ProcessingLot, now time.Time) bool {
	if certificationComplete(lot.CertificationStatus) {
		return false
	}
	if !lot.CompletedAt.Set {
		return false
	}

	status := strings.ToLower(strings.TrimSpace(lot.CertificationStatus))
	return now.Sub(lot.CompletedAt.Value) > CertificationDueAfter || status == "overdue"
}

func certificationComplete(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "complete":
		return true
	default:
		return false
	}
}
