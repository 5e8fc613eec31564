package infra

import (
	"fmt"
	"strings"
)

// Summary renders a plan as a short markdown overview.
func Summary(plan *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Infrastructure plan**: %s on %s\n\n", plan.Pattern, plan.Environment)

	b.WriteString("**Components**\n")
	for _, r := range plan.Requirements {
		fmt.Fprintf(&b, "- %s: %s (%s, %s priority)\n", r.Component, r.Service, r.Purpose, r.Priority)
	}

	fmt.Fprintf(&b, "\n**Estimated cost**: %s\n", plan.CostEstimate)

	if len(plan.SecurityRecommendations) > 0 {
		b.WriteString("\n**Security**\n")
		for _, s := range plan.SecurityRecommendations {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if len(plan.DeploymentRecommendations) > 0 {
		b.WriteString("\n**Deployment**\n")
		for _, d := range plan.DeploymentRecommendations {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	return b.String()
}
