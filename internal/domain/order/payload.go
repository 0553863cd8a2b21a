package order

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultDesignStatus is reported for designs that have not been reviewed yet
const DefaultDesignStatus = "Pending"

// Document types of derived design documents
const (
	DocumentTypeDrawing = "Drawings"
	DocumentTypePD      = "PD"
)

// ClientPOPayload is the step 1 payload
type ClientPOPayload struct {
	PONumber            string         `json:"poNumber"`
	PODate              string         `json:"poDate"`
	ClientName          string         `json:"clientName"`
	ClientEmail         string         `json:"clientEmail"`
	ClientPhone         string         `json:"clientPhone"`
	ProjectName         string         `json:"projectName"`
	ProjectCode         string         `json:"projectCode"`
	BillingAddress      string         `json:"billingAddress"`
	ShippingAddress     string         `json:"shippingAddress"`
	ClientAddress       string         `json:"clientAddress"`
	ProjectRequirements map[string]any `json:"projectRequirements"`
	Notes               *string        `json:"notes"`
}

// SalesOrderPayload is the step 2 payload, the union of the three tab payloads
type SalesOrderPayload struct {
	SalesProductTab
	QualityComplianceTab
	PaymentInternalTab
}

type SalesProductTab struct {
	ClientEmail      string         `json:"clientEmail"`
	ClientPhone      string         `json:"clientPhone"`
	EstimatedEndDate string         `json:"estimatedEndDate"`
	BillingAddress   string         `json:"billingAddress"`
	ShippingAddress  string         `json:"shippingAddress"`
	ProductDetails   map[string]any `json:"productDetails"`
}

type QualityComplianceTab struct {
	QualityCompliance map[string]any `json:"qualityCompliance"`
	WarrantySupport   map[string]any `json:"warrantySupport"`
}

type PaymentInternalTab struct {
	PaymentTerms        *string        `json:"paymentTerms"`
	ProjectPriority     *string        `json:"projectPriority"`
	TotalAmount         *float64       `json:"totalAmount"`
	ProjectCode         *string        `json:"projectCode"`
	InternalInfo        map[string]any `json:"internalInfo"`
	SpecialInstructions *string        `json:"specialInstructions"`
}

// DesignEngineeringPayload is the step 3 payload
type DesignEngineeringPayload struct {
	GeneralDesignInfo    GeneralDesignInfo    `json:"generalDesignInfo"`
	ProductSpecification ProductSpecification `json:"productSpecification"`
	MaterialsRequired    MaterialsRequired    `json:"materialsRequired"`
	Attachments          Attachments          `json:"attachments"`
	Documents            []DocumentRef        `json:"documents"`
}

// DocumentRef is a design file flattened for the document registry
type DocumentRef struct {
	Type     string `json:"type"`
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
}

// MaterialRequirementsPayload is the step 4 payload
type MaterialRequirementsPayload struct {
	Materials []MaterialItem `json:"materials"`
}

// ProductionPlanPayload is the step 5 payload
type ProductionPlanPayload struct {
	Timeline       Timeline        `json:"timeline"`
	SelectedPhases map[string]bool `json:"selectedPhases"`
}

type Timeline struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// QualityCheckPayload is the step 6 payload
type QualityCheckPayload struct {
	QualityCompliance    QualityCompliance `json:"qualityCompliance"`
	WarrantySupport      WarrantySupport   `json:"warrantySupport"`
	InternalProjectOwner *string           `json:"internalProjectOwner"`
}

// ShipmentPayload is the step 7 payload
type ShipmentPayload struct {
	DeliveryTerms ShipmentTerms  `json:"deliveryTerms"`
	Shipment      ShipmentDetail `json:"shipment"`
}

// DeliveryPayload is the step 8 payload
type DeliveryPayload struct {
	DeliveryTerms       DeliveryTermsPayload `json:"deliveryTerms"`
	WarrantySupport     WarrantyPeriod       `json:"warrantySupport"`
	CustomerContact     string               `json:"customerContact"`
	ProjectRequirements AcceptanceCriteria   `json:"projectRequirements"`
	InternalInfo        DeliveryInternalInfo `json:"internalInfo"`
}

type DeliveryTermsPayload struct {
	DeliverySchedule     *string `json:"deliverySchedule"`
	InstallationRequired string  `json:"installationRequired"`
	SiteCommissioning    string  `json:"siteCommissioning"`
}

type WarrantyPeriod struct {
	WarrantyPeriod string `json:"warrantyPeriod"`
}

// BuildPayload maps the form to the payload committed for step. Every field
// of the step's payload is present, with its default when the form lacks it.
// Steps outside 1..8 yield an empty object.
func BuildPayload(step int, fd FormData) any {
	switch step {
	case 1:
		return buildClientPO(fd.ClientPO)
	case 2:
		return buildSalesOrder(fd.SalesOrder)
	case 3:
		return buildDesignEngineering(fd.DesignEngineering)
	case 4:
		return buildMaterialRequirements(fd.MaterialProcurement)
	case 5:
		return buildProductionPlan(fd.ProductionPlan)
	case 6:
		return buildQualityCheck(fd.QualityCheck)
	case 7:
		return ShipmentPayload{
			DeliveryTerms: fd.Shipment.DeliveryTerms,
			Shipment:      fd.Shipment.Shipment,
		}
	case 8:
		return buildDelivery(fd.Delivery)
	default:
		return map[string]any{}
	}
}

// BuildPayloadFromTree decodes tree and builds the payload for step
func BuildPayloadFromTree(step int, tree FormTree) (any, error) {
	fd, err := DecodeForm(tree)
	if err != nil {
		return nil, fmt.Errorf("build step %d payload: %w", step, err)
	}
	return BuildPayload(step, fd), nil
}

// TabPayload is one independently committed part of step 2
type TabPayload struct {
	Tab     string
	Payload any
}

// BuildSalesOrderTabs splits the step 2 payload into its three disjoint tabs,
// in commit order
func BuildSalesOrderTabs(fd FormData) []TabPayload {
	p := buildSalesOrder(fd.SalesOrder)
	return []TabPayload{
		{Tab: TabSalesProduct, Payload: p.SalesProductTab},
		{Tab: TabQualityCompliance, Payload: p.QualityComplianceTab},
		{Tab: TabPaymentInternal, Payload: p.PaymentInternalTab},
	}
}

func buildClientPO(c ClientPO) ClientPOPayload {
	return ClientPOPayload{
		PONumber:            c.PONumber,
		PODate:              c.PODate,
		ClientName:          c.ClientName,
		ClientEmail:         c.ClientEmail,
		ClientPhone:         c.ClientPhone,
		ProjectName:         c.ProjectName,
		ProjectCode:         c.ProjectCode,
		BillingAddress:      c.BillingAddress,
		ShippingAddress:     c.ShippingAddress,
		ClientAddress:       c.ClientAddress,
		ProjectRequirements: objectOrEmpty(c.ProjectRequirements),
		Notes:               stringOrNull(c.Notes),
	}
}

func buildSalesOrder(s SalesOrder) SalesOrderPayload {
	return SalesOrderPayload{
		SalesProductTab: SalesProductTab{
			ClientEmail:      s.ClientEmail,
			ClientPhone:      s.ClientPhone,
			EstimatedEndDate: s.EstimatedEndDate,
			BillingAddress:   s.BillingAddress,
			ShippingAddress:  s.ShippingAddress,
			ProductDetails:   objectOrEmpty(s.ProductDetails),
		},
		QualityComplianceTab: QualityComplianceTab{
			QualityCompliance: objectOrEmpty(s.QualityCompliance),
			WarrantySupport:   objectOrEmpty(s.WarrantySupport),
		},
		PaymentInternalTab: PaymentInternalTab{
			PaymentTerms:        stringOrNull(s.PaymentTerms),
			ProjectPriority:     stringOrNull(s.ProjectPriority),
			TotalAmount:         amountOrNull(s.TotalAmount),
			ProjectCode:         stringOrNull(s.ProjectCode),
			InternalInfo:        objectOrEmpty(s.InternalInfo),
			SpecialInstructions: stringOrNull(s.SpecialInstructions),
		},
	}
}

func buildDesignEngineering(d DesignEngineering) DesignEngineeringPayload {
	info := d.GeneralDesignInfo
	if info.DesignStatus == "" {
		info.DesignStatus = DefaultDesignStatus
	}

	req := d.MaterialsRequired
	req.SteelSections = listOrEmpty(req.SteelSections)
	req.Plates = listOrEmpty(req.Plates)
	req.Fasteners = listOrEmpty(req.Fasteners)
	req.Components = listOrEmpty(req.Components)
	req.Electrical = listOrEmpty(req.Electrical)
	req.Consumables = listOrEmpty(req.Consumables)

	att := Attachments{
		Drawings:  listOrEmpty(d.Attachments.Drawings),
		Documents: listOrEmpty(d.Attachments.Documents),
	}

	docs := make([]DocumentRef, 0, len(att.Drawings)+len(att.Documents))
	for i, f := range att.Drawings {
		docs = append(docs, documentRef(DocumentTypeDrawing, "drawing", i, f))
	}
	for i, f := range att.Documents {
		docs = append(docs, documentRef(DocumentTypePD, "document", i, f))
	}

	return DesignEngineeringPayload{
		GeneralDesignInfo:    info,
		ProductSpecification: d.ProductSpecification,
		MaterialsRequired:    req,
		Attachments:          att,
		Documents:            docs,
	}
}

func documentRef(docType, prefix string, idx int, file map[string]any) DocumentRef {
	name, _ := file["name"].(string)
	path := name
	if path == "" {
		path = fmt.Sprintf("%s_%d", prefix, idx)
	}
	return DocumentRef{Type: docType, FilePath: path, FileName: name}
}

func buildMaterialRequirements(m MaterialProcurement) MaterialRequirementsPayload {
	materials := make([]MaterialItem, 0, len(m.Materials))
	materials = append(materials, m.Materials...)

	categories := make([]string, 0, len(m.MaterialDetailsTable))
	for category := range m.MaterialDetailsTable {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		for _, item := range m.MaterialDetailsTable[category] {
			item.MaterialType = category
			materials = append(materials, item)
		}
	}
	return MaterialRequirementsPayload{Materials: materials}
}

func buildProductionPlan(p ProductionPlan) ProductionPlanPayload {
	phases := p.SelectedPhases
	if phases == nil {
		phases = map[string]bool{}
	}
	return ProductionPlanPayload{
		Timeline: Timeline{
			StartDate: p.ProductionStartDate,
			EndDate:   p.EstimatedCompletionDate,
		},
		SelectedPhases: phases,
	}
}

func buildQualityCheck(q QualityCheck) QualityCheckPayload {
	return QualityCheckPayload{
		QualityCompliance:    q.QualityCompliance,
		WarrantySupport:      q.WarrantySupport,
		InternalProjectOwner: stringOrNull(q.InternalProjectOwner),
	}
}

func buildDelivery(d DeliverySection) DeliveryPayload {
	return DeliveryPayload{
		DeliveryTerms: DeliveryTermsPayload{
			DeliverySchedule:     stringOrNull(d.DeliveryTerms.DeliverySchedule),
			InstallationRequired: d.DeliveryTerms.InstallationRequired,
			SiteCommissioning:    d.DeliveryTerms.SiteCommissioning,
		},
		WarrantySupport:     WarrantyPeriod{WarrantyPeriod: d.WarrantySupport.WarrantyPeriod},
		CustomerContact:     d.CustomerContact,
		ProjectRequirements: d.ProjectRequirements,
		InternalInfo:        d.InternalInfo,
	}
}

// MarshalJSON writes the known fields over any extra fields the item carried
func (m MaterialItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+8)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["id"] = m.ID
	out["materialType"] = m.MaterialType
	out["materialName"] = m.MaterialName
	out["specification"] = m.Specification
	out["quantity"] = m.Quantity
	out["unit"] = m.Unit
	out["source"] = m.Source
	out["remarks"] = m.Remarks
	return json.Marshal(out)
}

func objectOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func listOrEmpty(l []map[string]any) []map[string]any {
	if l == nil {
		return []map[string]any{}
	}
	return l
}

func stringOrNull(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func amountOrNull(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
