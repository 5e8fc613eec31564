package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/infra"
	"github.com/ziadkadry99/infrachat/internal/provisioner"
)

var terraformKeywords = []string{
	"terraform", "hcl", "iac", "infrastructure", "provision", "generate", "code",
	"init", "validate", "plan", "apply", "destroy", "run", "execute",
}

// TerraformProvider generates Terraform from plans and runs the Terraform
// CLI through a provisioner.
type TerraformProvider struct {
	invoker    provisioner.Invoker
	workDir    string
	allowApply bool
}

// NewTerraformProvider creates the Terraform tool provider. apply and destroy
// are refused unless allowApply is set.
func NewTerraformProvider(invoker provisioner.Invoker, workDir string, allowApply bool) *TerraformProvider {
	return &TerraformProvider{invoker: invoker, workDir: workDir, allowApply: allowApply}
}

func (p *TerraformProvider) Name() string { return "terraform" }

func (p *TerraformProvider) Capability() Capability {
	return Capability{Name: "terraform", Keywords: terraformKeywords, Threshold: 0.5, ToolExecution: true}
}

func (p *TerraformProvider) CanHandle(a analyzer.Analysis) float64 {
	return KeywordConfidence(terraformKeywords, a)
}

func (p *TerraformProvider) Tools() []string {
	return []string{"generate", "describe", "init", "validate", "plan", "apply", "destroy"}
}

func (p *TerraformProvider) GetKnowledge(_ context.Context, a analyzer.Analysis) (Response, error) {
	content := "I can generate Terraform for your current plan (\"generate terraform\") and run " +
		"init, validate and plan against it. Apply and destroy " + p.applyPolicy() + "."
	return Response{
		Success:    true,
		Content:    content,
		Confidence: p.CanHandle(a),
		Source:     p.Name(),
		Extra:      map[string]any{"tools": p.Tools()},
	}, nil
}

func (p *TerraformProvider) applyPolicy() string {
	if p.allowApply {
		return "are enabled"
	}
	return "are disabled in this deployment"
}

// ExecuteTool runs one Terraform tool.
func (p *TerraformProvider) ExecuteTool(ctx context.Context, req ToolRequest) (Response, error) {
	switch req.Tool {
	case "generate":
		return p.generate(req)
	case "describe":
		return p.describe(req), nil
	case "init", "validate", "plan":
		return p.invoke(ctx, req.Tool, append([]string{"-input=false", "-no-color"}, req.Args...))
	case "apply", "destroy":
		if !p.allowApply {
			return Response{
				Success:    false,
				Content:    fmt.Sprintf("terraform %s is disabled. Set provisioner.allow_apply to enable it.", req.Tool),
				Confidence: 0.9,
				Source:     p.Name(),
				Extra:      map[string]any{"tool": req.Tool, "refused": true},
			}, nil
		}
		return p.invoke(ctx, req.Tool, append([]string{"-input=false", "-no-color", "-auto-approve"}, req.Args...))
	default:
		return Response{}, fmt.Errorf("unknown terraform tool %q", req.Tool)
	}
}

func (p *TerraformProvider) generate(req ToolRequest) (Response, error) {
	if req.Plan == nil {
		return Response{
			Success:    false,
			Content:    "There is no infrastructure plan to generate code for yet. Describe what you want to create first.",
			Confidence: 0.5,
			Source:     p.Name(),
		}, nil
	}
	hcl, err := infra.RenderTerraform(req.Plan)
	if err != nil {
		return Response{}, err
	}

	extra := map[string]any{"tool": "generate", "pattern": req.Plan.Pattern, "environment": req.Plan.Environment}
	content := "```hcl\n" + hcl + "```"
	if req.Write {
		path := filepath.Join(p.workDir, "main.tf")
		if err := os.WriteFile(path, []byte(hcl), 0o644); err != nil {
			return Response{}, fmt.Errorf("writing %s: %w", path, err)
		}
		extra["path"] = path
		content = fmt.Sprintf("Wrote %s.\n\n%s", path, content)
	}
	return Response{Success: true, Content: content, Confidence: 0.9, Source: p.Name(), Extra: extra}, nil
}

func (p *TerraformProvider) describe(req ToolRequest) Response {
	if req.Plan != nil {
		return Response{
			Success:    true,
			Content:    infra.Summary(req.Plan),
			Confidence: 0.8,
			Source:     p.Name(),
			Extra:      map[string]any{"tool": "describe"},
		}
	}
	return Response{
		Success:    true,
		Content:    "Available Terraform operations: " + strings.Join(p.Tools(), ", ") + ". Apply and destroy " + p.applyPolicy() + ".",
		Confidence: 0.6,
		Source:     p.Name(),
		Extra:      map[string]any{"tool": "describe"},
	}
}

func (p *TerraformProvider) invoke(ctx context.Context, op string, args []string) (Response, error) {
	res, err := p.invoker.Invoke(ctx, op, args)
	if err != nil {
		return Response{}, err
	}

	output := strings.TrimSpace(res.Stdout)
	if !res.Success && strings.TrimSpace(res.Stderr) != "" {
		output = strings.TrimSpace(output + "\n" + res.Stderr)
	}
	status := "succeeded"
	conf := 0.9
	if !res.Success {
		status = fmt.Sprintf("failed with exit code %d", res.ReturnCode)
		conf = 0.4
	}
	return Response{
		Success:    res.Success,
		Content:    fmt.Sprintf("terraform %s %s.\n\n```\n%s\n```", op, status, output),
		Confidence: conf,
		Source:     p.Name(),
		Extra:      map[string]any{"tool": op, "return_code": res.ReturnCode},
	}, nil
}
