package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/logger"
	"github.com/spigell/applicant-screener/internal/pipeline"
	"github.com/spigell/applicant-screener/internal/routing"
	"github.com/spigell/applicant-screener/internal/scoring"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run a single submission payload through the screening pipeline",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("file", "f", "-", "JSON payload file, - reads stdin")
	scoreCmd.Flags().StringP("source", "s", "", "source of the payload (asked interactively when unknown)")
}

type scoreReport struct {
	Status      pipeline.Status  `json:"status"`
	ApplicantID string           `json:"applicant_id,omitempty"`
	Name        string           `json:"name,omitempty"`
	Email       string           `json:"email,omitempty"`
	Source      string           `json:"source,omitempty"`
	Path        scoring.Path     `json:"scoring_path,omitempty"`
	Verdict     routing.Decision `json:"verdict"`
	Threshold   int              `json:"threshold"`
	Result      *scoring.Result  `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

func newScoreReport(outcome pipeline.Outcome, err error) scoreReport {
	report := scoreReport{
		Status:      outcome.Status,
		ApplicantID: outcome.ApplicantID,
		Name:        outcome.Applicant.Name,
		Email:       outcome.Applicant.Email,
		Source:      outcome.Applicant.Source,
		Path:        outcome.Path,
		Verdict:     outcome.Verdict.Decision,
		Threshold:   outcome.Verdict.Threshold,
	}
	if outcome.Status == pipeline.StatusProcessed {
		result := outcome.Result
		report.Result = &result
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

func score(cmd *cobra.Command) {
	log, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		// stdout carries the report.
		Output: []string{"stderr"},
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		log.Fatal("failed to get config", zap.Error(err))
	}

	file, _ := cmd.Flags().GetString("file")
	payload, err := readPayload(file, cmd.InOrStdin())
	if err != nil {
		log.Fatal("failed to read payload", zap.Error(err))
	}

	source, _ := cmd.Flags().GetString("source")
	source, err = resolveSource(source, payload, canPrompt(file))
	if err != nil {
		log.Fatal("failed to choose source", zap.Error(err))
	}

	c, err := buildComponents(cmd.Context(), config, log)
	if err != nil {
		log.Fatal("failed to build components", zap.Error(err))
	}
	defer c.Close()

	outcome, procErr := c.processor.Process(cmd.Context(), source, payload)
	if procErr != nil && !errors.Is(procErr, applicant.ErrInvalidPayload) {
		log.Fatal("failed to process submission", zap.Error(procErr))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(newScoreReport(outcome, procErr)); err != nil {
		log.Fatal("failed to write report", zap.Error(err))
	}
}

func readPayload(file string, stdin io.Reader) (map[string]any, error) {
	var (
		body []byte
		err  error
	)

	if file == "" || file == "-" {
		body, err = io.ReadAll(stdin)
	} else {
		body, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	if payload == nil {
		return nil, errors.New("payload must be a JSON object")
	}
	return payload, nil
}

// canPrompt reports whether the source picker can read answers: the payload
// must not have consumed stdin, and stdin must be a terminal.
func canPrompt(file string) bool {
	if file == "" || file == "-" {
		return false
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// resolveSource prefers the flag, then the payload itself, then asks when
// interactive. Otherwise the generic mapping is used.
func resolveSource(flag string, payload map[string]any, interactive bool) (string, error) {
	if source := strings.TrimSpace(flag); source != "" {
		return source, nil
	}
	if source := applicant.SourceOf(payload); source != "" {
		return source, nil
	}
	if !interactive {
		return string(applicant.SourceGeneric), nil
	}

	items := make([]string, 0, len(applicant.Sources()))
	for _, s := range applicant.Sources() {
		items = append(items, string(s))
	}

	prompt := promptui.Select{
		Label: "Select payload source",
		Items: items,
	}

	_, source, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return source, nil
}
