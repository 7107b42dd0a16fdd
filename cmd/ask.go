package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"schoolprofile/internal/agent"
	"schoolprofile/internal/profile"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the school profiles using Claude AI via Fantasy",
	Long: `Ask a natural language question and get an answer grounded in the school
data. The agent can list schools, build profiles, follow metrics over time and
run read-only SQL.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  schoolprofile ask "How did Grady High School's graduation rate compare to the district in 2017?"
  schoolprofile ask "Which elementary schools beat the odds by more than 10 points?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := args[0]
		cfg := currentConfig()

		withService(func(svc Service) {
			answer, err := agent.GenerateResponse(
				context.Background(),
				question,
				rootCmd,
				agent.WithAPIKeyFromEnv(),
				agent.WithModel(cfg.Model),
				agent.WithBackend(&agentBackend{svc: svc}),
			)
			if err != nil {
				HandleError(err, "Failed to generate response")
			}
			fmt.Println(answer)
		})
	},
}

// agentBackend adapts Service to agent.Backend
type agentBackend struct {
	svc Service
}

func (a *agentBackend) GradeLevels() []string { return a.svc.GradeLevels() }

func (a *agentBackend) Schools(gradeLevel, prefix string) ([]string, error) {
	return a.svc.Schools(gradeLevel, prefix)
}

func (a *agentBackend) Years(gradeLevel string, metric profile.Metric) ([]string, error) {
	return a.svc.Years(gradeLevel, metric)
}

func (a *agentBackend) Profile(gradeLevel, school, compare string, years map[string]string) (*profile.Profile, error) {
	return a.svc.Profile(ProfileRequest{GradeLevel: gradeLevel, School: school, Compare: compare, Years: years})
}

func (a *agentBackend) Trend(gradeLevel string, metric profile.Metric, school, compare string) (*profile.SeriesMatrix, error) {
	return a.svc.Trend(gradeLevel, metric, school, compare)
}

func (a *agentBackend) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	return a.svc.ExecuteQuery(query)
}

func init() {
	rootCmd.AddCommand(askCmd)
}
