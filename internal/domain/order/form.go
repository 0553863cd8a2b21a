package order

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// FormTree is the untyped wizard form as edited by the session reducer:
// section name -> field name -> value. Values arrive from UI input or JSON
// and are only given a type when decoded with DecodeForm.
type FormTree map[string]any

// Section names of the form tree
const (
	SectionClientPO            = "clientPO"
	SectionSalesOrder          = "salesOrder"
	SectionDesignEngineering   = "designEngineering"
	SectionMaterialProcurement = "materialProcurement"
	SectionProductionPlan      = "productionPlan"
	SectionQualityCheck        = "qualityCheck"
	SectionShipment            = "shipment"
	SectionDelivery            = "delivery"
)

// Sections lists every section in wizard order
var Sections = []string{
	SectionClientPO,
	SectionSalesOrder,
	SectionDesignEngineering,
	SectionMaterialProcurement,
	SectionProductionPlan,
	SectionQualityCheck,
	SectionShipment,
	SectionDelivery,
}

// FormData is the typed view of a FormTree. Zero values are the documented
// defaults, so a missing field never needs a nil check.
type FormData struct {
	ClientPO            ClientPO            `mapstructure:"clientPO" json:"clientPO"`
	SalesOrder          SalesOrder          `mapstructure:"salesOrder" json:"salesOrder"`
	DesignEngineering   DesignEngineering   `mapstructure:"designEngineering" json:"designEngineering"`
	MaterialProcurement MaterialProcurement `mapstructure:"materialProcurement" json:"materialProcurement"`
	ProductionPlan      ProductionPlan      `mapstructure:"productionPlan" json:"productionPlan"`
	QualityCheck        QualityCheck        `mapstructure:"qualityCheck" json:"qualityCheck"`
	Shipment            ShipmentSection     `mapstructure:"shipment" json:"shipment"`
	Delivery            DeliverySection     `mapstructure:"delivery" json:"delivery"`
}

type ClientPO struct {
	PONumber            string         `mapstructure:"poNumber" json:"poNumber"`
	PODate              string         `mapstructure:"poDate" json:"poDate"`
	ClientName          string         `mapstructure:"clientName" json:"clientName"`
	ClientEmail         string         `mapstructure:"clientEmail" json:"clientEmail"`
	ClientPhone         string         `mapstructure:"clientPhone" json:"clientPhone"`
	ProjectName         string         `mapstructure:"projectName" json:"projectName"`
	ProjectCode         string         `mapstructure:"projectCode" json:"projectCode"`
	BillingAddress      string         `mapstructure:"billingAddress" json:"billingAddress"`
	ShippingAddress     string         `mapstructure:"shippingAddress" json:"shippingAddress"`
	ClientAddress       string         `mapstructure:"clientAddress" json:"clientAddress"`
	ProjectRequirements map[string]any `mapstructure:"projectRequirements" json:"projectRequirements"`
	Notes               string         `mapstructure:"notes" json:"notes"`
}

type SalesOrder struct {
	OrderDate           string         `mapstructure:"orderDate" json:"orderDate"`
	ClientEmail         string         `mapstructure:"clientEmail" json:"clientEmail"`
	ClientPhone         string         `mapstructure:"clientPhone" json:"clientPhone"`
	EstimatedEndDate    string         `mapstructure:"estimatedEndDate" json:"estimatedEndDate"`
	BillingAddress      string         `mapstructure:"billingAddress" json:"billingAddress"`
	ShippingAddress     string         `mapstructure:"shippingAddress" json:"shippingAddress"`
	ProductDetails      map[string]any `mapstructure:"productDetails" json:"productDetails"`
	QualityCompliance   map[string]any `mapstructure:"qualityCompliance" json:"qualityCompliance"`
	WarrantySupport     map[string]any `mapstructure:"warrantySupport" json:"warrantySupport"`
	PaymentTerms        string         `mapstructure:"paymentTerms" json:"paymentTerms"`
	ProjectPriority     string         `mapstructure:"projectPriority" json:"projectPriority"`
	TotalAmount         float64        `mapstructure:"totalAmount" json:"totalAmount"`
	ProjectCode         string         `mapstructure:"projectCode" json:"projectCode"`
	InternalInfo        map[string]any `mapstructure:"internalInfo" json:"internalInfo"`
	SpecialInstructions string         `mapstructure:"specialInstructions" json:"specialInstructions"`
}

type DesignEngineering struct {
	GeneralDesignInfo    GeneralDesignInfo    `mapstructure:"generalDesignInfo" json:"generalDesignInfo"`
	ProductSpecification ProductSpecification `mapstructure:"productSpecification" json:"productSpecification"`
	MaterialsRequired    MaterialsRequired    `mapstructure:"materialsRequired" json:"materialsRequired"`
	Attachments          Attachments          `mapstructure:"attachments" json:"attachments"`
}

type GeneralDesignInfo struct {
	DesignID           string `mapstructure:"designId" json:"designId"`
	DesignStatus       string `mapstructure:"designStatus" json:"designStatus"`
	DesignEngineerName string `mapstructure:"designEngineerName" json:"designEngineerName"`
}

type ProductSpecification struct {
	ProductName          string `mapstructure:"productName" json:"productName"`
	SystemLength         string `mapstructure:"systemLength" json:"systemLength"`
	SystemWidth          string `mapstructure:"systemWidth" json:"systemWidth"`
	SystemHeight         string `mapstructure:"systemHeight" json:"systemHeight"`
	LoadCapacity         string `mapstructure:"loadCapacity" json:"loadCapacity"`
	OperatingEnvironment string `mapstructure:"operatingEnvironment" json:"operatingEnvironment"`
	MaterialGrade        string `mapstructure:"materialGrade" json:"materialGrade"`
	SurfaceFinish        string `mapstructure:"surfaceFinish" json:"surfaceFinish"`
}

type MaterialsRequired struct {
	SteelSections []map[string]any `mapstructure:"steelSections" json:"steelSections"`
	Plates        []map[string]any `mapstructure:"plates" json:"plates"`
	Fasteners     []map[string]any `mapstructure:"fasteners" json:"fasteners"`
	Components    []map[string]any `mapstructure:"components" json:"components"`
	Electrical    []map[string]any `mapstructure:"electrical" json:"electrical"`
	Consumables   []map[string]any `mapstructure:"consumables" json:"consumables"`
}

// Attachments are file descriptors; only "name" is interpreted
type Attachments struct {
	Drawings  []map[string]any `mapstructure:"drawings" json:"drawings"`
	Documents []map[string]any `mapstructure:"documents" json:"documents"`
}

type MaterialProcurement struct {
	Materials            []MaterialItem            `mapstructure:"materials" json:"materials"`
	MaterialDetailsTable map[string][]MaterialItem `mapstructure:"materialDetailsTable" json:"materialDetailsTable"`
}

// MaterialItem is one material line. Fields not listed here are kept in
// Extra and written back out next to the known ones.
type MaterialItem struct {
	ID            string         `mapstructure:"id" json:"id"`
	MaterialType  string         `mapstructure:"materialType" json:"materialType"`
	MaterialName  string         `mapstructure:"materialName" json:"materialName"`
	Specification string         `mapstructure:"specification" json:"specification"`
	Quantity      float64        `mapstructure:"quantity" json:"quantity"`
	Unit          string         `mapstructure:"unit" json:"unit"`
	Source        string         `mapstructure:"source" json:"source"`
	Remarks       string         `mapstructure:"remarks" json:"remarks"`
	Extra         map[string]any `mapstructure:",remain" json:"-"`
}

type ProductionPlan struct {
	ProductionStartDate     string          `mapstructure:"productionStartDate" json:"productionStartDate"`
	EstimatedCompletionDate string          `mapstructure:"estimatedCompletionDate" json:"estimatedCompletionDate"`
	SelectedPhases          map[string]bool `mapstructure:"selectedPhases" json:"selectedPhases"`
}

type QualityCheck struct {
	QualityCompliance    QualityCompliance `mapstructure:"qualityCompliance" json:"qualityCompliance"`
	WarrantySupport      WarrantySupport   `mapstructure:"warrantySupport" json:"warrantySupport"`
	InternalProjectOwner string            `mapstructure:"internalProjectOwner" json:"internalProjectOwner"`
}

type QualityCompliance struct {
	QualityStandards      string `mapstructure:"qualityStandards" json:"qualityStandards"`
	WeldingStandards      string `mapstructure:"weldingStandards" json:"weldingStandards"`
	SurfaceFinish         string `mapstructure:"surfaceFinish" json:"surfaceFinish"`
	MechanicalLoadTesting string `mapstructure:"mechanicalLoadTesting" json:"mechanicalLoadTesting"`
	ElectricalCompliance  string `mapstructure:"electricalCompliance" json:"electricalCompliance"`
	DocumentsRequired     string `mapstructure:"documentsRequired" json:"documentsRequired"`
}

type WarrantySupport struct {
	WarrantyPeriod string `mapstructure:"warrantyPeriod" json:"warrantyPeriod"`
	ServiceSupport string `mapstructure:"serviceSupport" json:"serviceSupport"`
}

type ShipmentSection struct {
	DeliveryTerms ShipmentTerms  `mapstructure:"deliveryTerms" json:"deliveryTerms"`
	Shipment      ShipmentDetail `mapstructure:"shipment" json:"shipment"`
}

type ShipmentTerms struct {
	DeliverySchedule     string `mapstructure:"deliverySchedule" json:"deliverySchedule"`
	PackagingInfo        string `mapstructure:"packagingInfo" json:"packagingInfo"`
	DispatchMode         string `mapstructure:"dispatchMode" json:"dispatchMode"`
	InstallationRequired string `mapstructure:"installationRequired" json:"installationRequired"`
	SiteCommissioning    string `mapstructure:"siteCommissioning" json:"siteCommissioning"`
}

type ShipmentDetail struct {
	Marking     string `mapstructure:"marking" json:"marking"`
	Dismantling string `mapstructure:"dismantling" json:"dismantling"`
	Packing     string `mapstructure:"packing" json:"packing"`
	Dispatch    string `mapstructure:"dispatch" json:"dispatch"`
}

type DeliverySection struct {
	DeliveryTerms       DeliveryTerms        `mapstructure:"deliveryTerms" json:"deliveryTerms"`
	WarrantySupport     WarrantySupport      `mapstructure:"warrantySupport" json:"warrantySupport"`
	CustomerContact     string               `mapstructure:"customerContact" json:"customerContact"`
	ProjectRequirements AcceptanceCriteria   `mapstructure:"projectRequirements" json:"projectRequirements"`
	InternalInfo        DeliveryInternalInfo `mapstructure:"internalInfo" json:"internalInfo"`
}

type DeliveryTerms struct {
	DeliverySchedule     string `mapstructure:"deliverySchedule" json:"deliverySchedule"`
	InstallationRequired string `mapstructure:"installationRequired" json:"installationRequired"`
	SiteCommissioning    string `mapstructure:"siteCommissioning" json:"siteCommissioning"`
}

type AcceptanceCriteria struct {
	AcceptanceCriteria string `mapstructure:"acceptanceCriteria" json:"acceptanceCriteria"`
}

type DeliveryInternalInfo struct {
	ProjectManager       string `mapstructure:"projectManager" json:"projectManager"`
	ProductionSupervisor string `mapstructure:"productionSupervisor" json:"productionSupervisor"`
}

// DecodeForm gives tree its typed shape. Input is weakly typed: numeric
// strings become numbers, numbers become strings and "" becomes zero.
// Unknown keys are ignored; a value whose shape cannot be converted (for
// example a section that is a string) is an error.
func DecodeForm(tree FormTree) (FormData, error) {
	var fd FormData
	if len(tree) == 0 {
		return fd, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fd,
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return fd, fmt.Errorf("create form decoder: %w", err)
	}

	if err := dec.Decode(map[string]any(tree)); err != nil {
		return fd, fmt.Errorf("decode form data: %w", err)
	}
	return fd, nil
}
