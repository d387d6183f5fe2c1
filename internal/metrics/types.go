package metrics

type Mode string

const (
	ModeStandard Mode = "standard"
	ModePro      Mode = "pro"
)

type ValueType string

const (
	ValueCostReduction   ValueType = "cost_reduction"
	ValueCostAvoidance   ValueType = "cost_avoidance"
	ValueRevenueIncrease ValueType = "revenue_increase"
	ValueNewRevenue      ValueType = "new_revenue"

	// Accepted for stored reports created before the value types were split. Resolves to zero.
	ValueRevenueGeneration ValueType = "revenue_generation"
)

type Answer string

const (
	AnswerYes     Answer = "sim"
	AnswerPartial Answer = "parcial"
	AnswerNo      Answer = "nao"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type Costs struct {
	DirectCost          float64 `json:"directCost"`
	Fees                float64 `json:"fees"`
	Licenses            float64 `json:"licenses"`
	ExternalServices    float64 `json:"externalServices"`
	Infrastructure      float64 `json:"infrastructure"`
	LaborRate           float64 `json:"laborRate"`
	LaborHours          float64 `json:"laborHours"`
	TeamSize            float64 `json:"teamSize"`
	OtherExpenses       float64 `json:"otherExpenses"`
	DurationMonths      float64 `json:"durationMonths"`
	ScaleDurationMonths float64 `json:"scaleDurationMonths"`
}

type OperationalMetrics struct {
	CurrentUnitCost       float64 `json:"currentUnitCost"`
	NewUnitCost           float64 `json:"newUnitCost"`
	VolumeTraded          float64 `json:"volumeTraded"`
	TicketPrice           float64 `json:"ticketPrice"`
	NewTicketPrice        float64 `json:"newTicketPrice"`
	AdditionalSales       float64 `json:"additionalSales"`
	ProductPrice          float64 `json:"productPrice"`
	SalesVolume           float64 `json:"salesVolume"`
	FuturePredictableCost float64 `json:"futurePredictableCost"`
	Frequency             float64 `json:"frequency"`
}

type ScenarioInput struct {
	DirectCost float64 `json:"directCost"`
	Volume     float64 `json:"volume"`
	Efficiency float64 `json:"efficiency"`
}

type RiskAssessment struct {
	StrategicAlignment       RiskLevel `json:"strategicAlignment"`
	ReputationalRisk         RiskLevel `json:"reputationalRisk"`
	TechnicalIncompatibility RiskLevel `json:"technicalIncompatibility"`
	StartupMaturity          RiskLevel `json:"startupMaturity"`
	LegalBarriers            RiskLevel `json:"legalBarriers"`
	ESGImpact                RiskLevel `json:"esgImpact"`
	ITPriority               RiskLevel `json:"itPriority"`
	HRAvailability           RiskLevel `json:"hrAvailability"`
	StakeholderSupport       RiskLevel `json:"stakeholderSupport"`
	ExecutionRisk            RiskLevel `json:"executionRisk"`
}

func (r RiskAssessment) Levels() []RiskLevel {
	return []RiskLevel{
		r.StrategicAlignment,
		r.ReputationalRisk,
		r.TechnicalIncompatibility,
		r.StartupMaturity,
		r.LegalBarriers,
		r.ESGImpact,
		r.ITPriority,
		r.HRAvailability,
		r.StakeholderSupport,
		r.ExecutionRisk,
	}
}

// ProjectInputs is built once at the form boundary and passed by value.
// A nil ConfidenceAnswers means the checklist was never filled in, which
// differs from an empty list.
type ProjectInputs struct {
	Mode              Mode               `json:"mode"`
	ProjectName       string             `json:"projectName,omitempty"`
	AssociatedCompany string             `json:"associatedCompany,omitempty"`
	StartupName       string             `json:"startupName,omitempty"`
	Department        string             `json:"department,omitempty"`
	Goal              string             `json:"goal,omitempty"`
	InnovationThesis  string             `json:"innovationThesis,omitempty"`
	ValueType         ValueType          `json:"valueType"`
	Costs             Costs              `json:"costs"`
	Operational       OperationalMetrics `json:"operational"`
	Pessimistic       *ScenarioInput     `json:"scenarioPessimistic,omitempty"`
	Realistic         *ScenarioInput     `json:"scenarioRealistic,omitempty"`
	Optimistic        *ScenarioInput     `json:"scenarioOptimistic,omitempty"`
	ConfidenceAnswers []Answer           `json:"confidenceAnswers"`
	Risks             *RiskAssessment    `json:"risks,omitempty"`
}

type ScenarioMetrics struct {
	ROI       float64 `json:"roi"`
	NetProfit float64 `json:"netProfit"`
	Revenue   float64 `json:"revenue"`
	TotalCost float64 `json:"totalCost"`
	Label     string  `json:"label"`
}

type Scenarios struct {
	Pessimistic ScenarioMetrics `json:"pessimistic"`
	Realistic   ScenarioMetrics `json:"realistic"`
	Optimistic  ScenarioMetrics `json:"optimistic"`
}

type RolloutYear struct {
	Year              int     `json:"year"`
	Revenue           float64 `json:"revenue"`
	Cost              float64 `json:"cost"`
	Profit            float64 `json:"profit"`
	AccumulatedProfit float64 `json:"accumulatedProfit"`
}

type CalculatedMetrics struct {
	PaybackPeriodMonths float64       `json:"paybackPeriodMonths"`
	InnovationScore     float64       `json:"innovationScore"`
	SuccessProbability  float64       `json:"successProbability"`
	Scenarios           Scenarios     `json:"scenarios"`
	TotalCost           float64       `json:"pocTotalCost"`
	ConfidenceScore     float64       `json:"icvScore"`
	CostBenefitRatio    float64       `json:"costBenefitRatio"`
	EconomicValue       float64       `json:"economicValue"`
	EconomicGain        float64       `json:"economicGain"`
	RolloutProjections  []RolloutYear `json:"rolloutProjections,omitempty"`
	RiskScore           float64       `json:"riskScore"`
}

// PaybackUndefined marks a payback period that cannot be computed because the
// project generates no monthly value.
const PaybackUndefined = 0.0
