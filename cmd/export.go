package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/applicant-screener/internal/logger"
	"github.com/spigell/applicant-screener/internal/report"
	"go.uber.org/zap"
)

const exportLimit = 10000

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored applicants and statistics to an xlsx workbook",
	Run: func(cmd *cobra.Command, _ []string) {
		export(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("out", "o", "", "output file (default is applicants-<date>.xlsx)")
	exportCmd.Flags().Int("limit", exportLimit, "maximum number of applicants to export")
}

func export(cmd *cobra.Command) {
	log, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		log.Fatal("failed to get config", zap.Error(err))
	}

	store, err := newStore(cmd.Context(), config.Storage)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(cmd.Context(), limit)
	if err != nil {
		log.Fatal("failed to list applicants", zap.Error(err))
	}

	now := time.Now()
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("applicants-%s.xlsx", now.Format("2006-01-02"))
	}

	path, err := report.ExportXLSX(records, config.Scoring.Threshold, now, out)
	if err != nil {
		log.Fatal("failed to export applicants", zap.Error(err))
	}

	log.Info("applicants exported", zap.String("file", path), zap.Int("count", len(records)))
}
