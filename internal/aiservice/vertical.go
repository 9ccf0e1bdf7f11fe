package aiservice

// Vertical is one of the six fixed subject domains the AI service supports
// for both research and planning.
type Vertical string

const (
	VerticalVacation   Vertical = "vacation"
	VerticalEducation  Vertical = "education"
	VerticalInsurance  Vertical = "insurance"
	VerticalInvestment Vertical = "investment"
	VerticalVideoShoot Vertical = "video-shoot"
	VerticalGeneral    Vertical = "general"
)

// ParseVertical maps a name to its vertical. Anything unrecognized falls
// back to the general-purpose vertical rather than failing.
func ParseVertical(name string) Vertical {
	switch Vertical(name) {
	case VerticalVacation, VerticalEducation, VerticalInsurance, VerticalInvestment, VerticalVideoShoot, VerticalGeneral:
		return Vertical(name)
	default:
		return VerticalGeneral
	}
}

func (v Vertical) researchPath() string {
	return "/api/researchers/" + string(v)
}

func (v Vertical) researchServiceType() string {
	return string(v) + "-research"
}

// planPath keeps the remote service's historical quirk: the investment
// planner lives under money-investment.
func (v Vertical) planPath() string {
	if v == VerticalInvestment {
		return "/api/planners/money-investment"
	}
	return "/api/planners/" + string(v)
}

func (v Vertical) planServiceType() string {
	if v == VerticalInvestment {
		return "money-investment-planning"
	}
	return string(v) + "-planning"
}
