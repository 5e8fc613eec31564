package infra

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// terraformTemplate renders a skeleton root module. Each requirement becomes
// a module block pointing at a local module named after its service type.
var terraformTemplate = template.Must(template.New("main.tf").Funcs(template.FuncMap{
	"ident": terraformIdent,
}).Parse(`# Generated by infrachat for a {{.Plan.Pattern}} deployment on {{.Plan.Environment}}.
# Request: {{.Request}}
# Estimated cost: {{.Plan.CostEstimate}}

terraform {
  required_version = ">= 1.5.0"
  required_providers {
{{- range .Providers}}
    {{.Name}} = {
      source = "{{.Source}}"
    }
{{- end}}
  }
}
{{range .Providers}}
provider "{{.Name}}" {
{{- if eq .Name "azurerm"}}
  features {}
{{- else if eq .Name "google"}}
  project = var.project_id
  region  = var.{{.RegionVar}}
{{- else}}
  region = var.{{.RegionVar}}
{{- end}}
}
{{end}}
{{- range .Regions}}
variable "{{.Var}}" {
  type    = string
  default = "{{.Default}}"
}
{{end}}
{{- if .NeedsProject}}
variable "project_id" {
  type = string
}
{{end}}
{{- range .Plan.Requirements}}
# {{.Purpose}} ({{.Priority}} priority)
module "{{ident .Component}}" {
  source  = "./modules/{{.ServiceType}}"
  service = "{{.Service}}"
}
{{end}}`))

type terraformProvider struct {
	Name      string
	Source    string
	RegionVar string
}

type terraformRegion struct {
	Var     string
	Default string
}

var providersByEnv = map[Environment][]terraformProvider{
	EnvAWS:   {{Name: "aws", Source: "hashicorp/aws", RegionVar: "aws_region"}},
	EnvAzure: {{Name: "azurerm", Source: "hashicorp/azurerm"}},
	EnvGCP:   {{Name: "google", Source: "hashicorp/google", RegionVar: "gcp_region"}},
	EnvHybrid: {
		{Name: "aws", Source: "hashicorp/aws", RegionVar: "aws_region"},
		{Name: "azurerm", Source: "hashicorp/azurerm"},
		{Name: "google", Source: "hashicorp/google", RegionVar: "gcp_region"},
	},
}

// RenderTerraform renders a Terraform skeleton for plan. On-premise plans get
// module blocks without a cloud provider.
func RenderTerraform(plan *Plan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("rendering terraform: no plan")
	}

	providers := providersByEnv[plan.Environment]
	var regions []terraformRegion
	needsProject := false
	for _, p := range providers {
		switch p.Name {
		case "aws":
			regions = append(regions, terraformRegion{Var: p.RegionVar, Default: defaultRegions[EnvAWS]})
		case "google":
			regions = append(regions, terraformRegion{Var: p.RegionVar, Default: defaultRegions[EnvGCP]})
			needsProject = true
		}
	}

	data := struct {
		Plan         *Plan
		Request      string
		Providers    []terraformProvider
		Regions      []terraformRegion
		NeedsProject bool
	}{
		Plan:         plan,
		Request:      strings.Join(strings.Fields(plan.OriginalRequest), " "),
		Providers:    providers,
		Regions:      regions,
		NeedsProject: needsProject,
	}

	var buf bytes.Buffer
	if err := terraformTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering terraform: %w", err)
	}
	return buf.String(), nil
}

// terraformIdent turns a component name into a valid Terraform identifier.
func terraformIdent(s string) string {
	var b strings.Builder
	for i, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "component"
	}
	return b.String()
}
