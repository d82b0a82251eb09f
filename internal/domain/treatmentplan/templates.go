package treatmentplan

// Template is a predefined treatment protocol a plan can be materialized
// from.
type Template struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Phases []PlanPhase `json:"phases"`
}

var templates = []Template{
	{
		ID:   "ivf_standard",
		Name: "IVF Standard Cycle",
		Type: "ivf",
		Phases: []PlanPhase{
			{
				Phase:     "I. Preparation",
				Steps:     "Testing, uterine check, and protocol setup",
				Duration:  "2-4 Weeks",
				StartTime: "Prior to cycle start (often with prior menstrual period)",
			},
			{
				Phase:     "II. Stimulation",
				Steps:     "Ovarian Stimulation: Daily hormone injections and frequent monitoring",
				Duration:  "8-14 Days",
				StartTime: "Day 2 or 3 of menstrual cycle",
			},
			{
				Phase:     "III. Retrieval",
				Steps:     "The Trigger Shot: Final injection to mature eggs",
				Duration:  "34-36 Hours",
				StartTime: "Mid-cycle, when follicles are mature",
			},
			{
				Phase:     "IV. Laboratory",
				Steps:     "Egg Retrieval & Sperm Collection: Collection of gametes",
				Duration:  "1 Day",
				StartTime: "34-36 hours after trigger shot",
			},
			{
				Phase:     "V. Embryo Culture",
				Steps:     "Fertilization: Eggs and sperm combine",
				Duration:  "3-6 Days",
				StartTime: "Starts immediately after retrieval",
			},
			{
				Phase:     "VI. Transfer",
				Steps:     "Embryo Transfer: Selected embryo placed into uterus",
				Duration:  "1 Day",
				StartTime: "Day 3 or Day 5 after retrieval",
			},
			{
				Phase:     "VII. Result",
				Steps:     "Luteal Support: Medication to maintain uterine lining. Pregnancy Test: Blood test for hCG",
				Duration:  "9-14 Days",
				StartTime: "Begins immediately after transfer (Two-Week Wait)",
			},
		},
	},
	{
		ID:   "iui_standard",
		Name: "IUI Standard Cycle",
		Type: "iui",
		Phases: []PlanPhase{
			{
				Phase:     "I. Preparation",
				Steps:     "Baseline testing and monitoring",
				Duration:  "1-2 Weeks",
				StartTime: "Day 1 of menstrual cycle",
			},
			{
				Phase:     "II. Stimulation",
				Steps:     "Ovulation induction",
				Duration:  "5-10 Days",
				StartTime: "Day 3-5 of cycle",
			},
			{
				Phase:     "III. Insemination",
				Steps:     "IUI procedure",
				Duration:  "1 Day",
				StartTime: "When ovulation is detected",
			},
			{
				Phase:     "IV. Result",
				Steps:     "Pregnancy test",
				Duration:  "14 Days",
				StartTime: "14 days after insemination",
			},
		},
	},
}

// Templates returns the predefined protocols.
func Templates() []Template { return templates }

// TemplateByID looks up a protocol by its identifier.
func TemplateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// templateIDForType maps a treatment decision type to a template id.
// Unknown types have no template and materialize as "custom".
func templateIDForType(decisionType string) string {
	switch decisionType {
	case "ivf":
		return "ivf_standard"
	case "iui":
		return "iui_standard"
	}
	return ""
}
