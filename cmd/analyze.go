package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/infra"
)

var (
	analyzeEnv     string
	analyzeFormat  string
	analyzeOut     string
	analyzeExplain bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [request]",
	Short: "Analyze an infrastructure request into a plan",
	Long: `Analyzes a free-form infrastructure request into a plan without starting a
conversation. Prints a summary, the plan as JSON, or a Terraform skeleton.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeEnv, "env", "", "preferred environment when the request names none (aws, azure, gcp, on-premise, hybrid)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "summary", "output format: summary, json or terraform")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "write output to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeExplain, "explain", false, "also print the query analysis (intent, complexity, keywords)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	text := strings.Join(args, " ")

	prefs := infra.Preferences{}
	if analyzeEnv != "" {
		env := infra.ParseEnvironment(analyzeEnv)
		if env == infra.EnvUnknown {
			return fmt.Errorf("unknown environment %q", analyzeEnv)
		}
		prefs.PreferredEnvironment = env
	}
	plan := infra.NewAnalyzer(infra.Environment(cfg.DefaultEnvironment)).Analyze(text, prefs)

	var out string
	switch analyzeFormat {
	case "summary":
		out = infra.Summary(plan)
	case "json":
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		out = string(data) + "\n"
	case "terraform":
		out, err = infra.RenderTerraform(plan)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want summary, json or terraform)", analyzeFormat)
	}

	if analyzeExplain {
		printAnalysis(analyzer.Options{MaxQueryLength: cfg.Analyzer.MaxQueryLength}, text)
	}

	if analyzeOut != "" {
		if err := os.WriteFile(analyzeOut, []byte(out), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", analyzeOut, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s plan for %s to %s\n", plan.Pattern, plan.Environment, analyzeOut)
		return nil
	}
	fmt.Print(out)
	return nil
}

// printAnalysis writes the query analysis to stderr so it never mixes with
// the plan output.
func printAnalysis(opts analyzer.Options, text string) {
	qa, err := analyzer.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create analyzer: %v\n", err)
		return
	}
	a := qa.Analyze(text)
	fmt.Fprintf(os.Stderr, "Intent:     %s\n", a.Intent)
	fmt.Fprintf(os.Stderr, "Complexity: %s\n", a.Complexity)
	fmt.Fprintf(os.Stderr, "Confidence: %.2f\n", a.Confidence)
	fmt.Fprintf(os.Stderr, "Keywords:   %s\n", strings.Join(a.Keywords, ", "))
	if len(a.Context.TechnicalDomains) > 0 {
		fmt.Fprintf(os.Stderr, "Domains:    %s\n", strings.Join(a.Context.TechnicalDomains, ", "))
	}
	fmt.Fprintln(os.Stderr)
}
