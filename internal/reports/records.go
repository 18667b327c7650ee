package reports

// Raw record shapes fetched from the operations API. Numeric and date fields
// are optional in the source data; Quantity and Timestamp keep track of
// whether a value was actually present so fallback rules can tell "zero"
// apart from "absent".

// Shipment is an inbound or outbound shipment record.
type Shipment struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"createdAt"`
}

// ProcessedMaterial is one weighed output stream from a processing lot.
// Weight may arrive in either weightLbs or weight depending on the source
// system's vintage; weightLbs wins when both are present.
type ProcessedMaterial struct {
	ID           string    `json:"id"`
	MaterialType string    `json:"materialType"`
	WeightLbs    Quantity  `json:"weightLbs"`
	Weight       Quantity  `json:"weight"`
	Status       string    `json:"status"`
	LotID        string    `json:"lotId"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// Asset is a single tracked IT asset.
type Asset struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Disposition string    `json:"disposition"`
	Category    string    `json:"category"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// ProcessingLot is a batch of material moving through processing.
type ProcessingLot struct {
	ID                   string    `json:"id"`
	TotalProcessedWeight Quantity  `json:"totalProcessedWeight"`
	TotalIncomingWeight  Quantity  `json:"totalIncomingWeight"`
	ActualRevenue        Quantity  `json:"actualRevenue"`
	ExpectedRevenue      Quantity  `json:"expectedRevenue"`
	ProcessingCost       Quantity  `json:"processingCost"`
	IncomingMaterialCost Quantity  `json:"incomingMaterialCost"`
	CertificationStatus  string    `json:"certificationStatus"`
	CompletedAt          Timestamp `json:"completedAt"`
	CreatedAt            Timestamp `json:"createdAt"`
}

// RawRecords bundles the four independently fetched collections for one
// dashboard load cycle. A failed fetch leaves its collection empty and notes
// the error under its domain key; aggregation proceeds with partial data.
type RawRecords struct {
	Shipments []Shipment          `json:"shipments"`
	Materials []ProcessedMaterial `json:"materials"`
	Assets    []Asset             `json:"assets"`
	Lots      []ProcessingLot     `json:"lots"`

	Errors map[string]string `json:"errors,omitempty"`
}

// Counts returns per-domain record counts for response metadata.
func (r RawRecords) Counts() map[string]int {
	return map[string]int{
		"shipments":           len(r.Shipments),
		"processed_materials": len(r.Materials),
		"assets":              len(r.Assets),
		"processing_lots":     len(r.Lots),
	}
}
