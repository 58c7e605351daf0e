package cli

import (
	"context"
	"fmt"

	"jobassist/internal/common"
	"jobassist/internal/errors"
	"jobassist/internal/profile"
	"jobassist/internal/scrape"
	"jobassist/internal/types"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Map external profile data into a canonical resume record",
}

var profileMapCmd = &cobra.Command{
	Use:   "map [profile-file]",
	Short: "Map an exported profile JSON document",
	Long: `Map an exported profile JSON document into the canonical resume record.

Missing fields become empty strings or empty lists. Experience entries are
rendered as sentences and skills are flattened in a fixed category order.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: prepareOutput(&profileMapConfig),
	RunE:    runProfileMap,
}

var profileImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch a public profile page and map its embedded data",
	Long: `Fetch a public profile page, locate the profile in the page's embedded
JSON (JSON-LD or framework state) and map it into the canonical resume record.`,
	Args:    cobra.NoArgs,
	PreRunE: prepareOutput(&profileImportConfig),
	RunE:    runProfileImport,
}

var (
	profileMapConfig    common.CommandConfig
	profileImportConfig common.CommandConfig
	profileImportURL    string
	profileImportPath   string
)

func init() {
	addOutputFlags(profileMapCmd, &profileMapConfig)
	addOutputFlags(profileImportCmd, &profileImportConfig)

	profileImportCmd.Flags().StringVar(&profileImportURL, "url", "", "Profile page URL")
	profileImportCmd.Flags().StringVar(&profileImportPath, "path", "", "gjson path of the profile inside the embedded data (default from config)")
	_ = profileImportCmd.MarkFlagRequired("url")

	profileCmd.AddCommand(profileMapCmd)
	profileCmd.AddCommand(profileImportCmd)
}

func runProfileMap(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	createInput := func(contents []string) (*profile.ExternalProfile, error) {
		if len(contents) != 1 {
			return nil, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		ext, err := profile.Decode([]byte(contents[0]))
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidProfile, "Profile could not be decoded", err)
		}
		return ext, nil
	}

	mapOperation := func(_ context.Context, ext *profile.ExternalProfile) (types.CanonicalProfile, error) {
		return profile.Map(ext), nil
	}

	err := common.RunCommand(cmd.Context(), logger, profileMapConfig, args, createInput, mapOperation, nil)
	if err != nil {
		return fmt.Errorf("failed to map profile: %w", err)
	}
	logger.Info("Profile mapped successfully")
	return nil
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	importer := profile.NewImporter(scrape.NewFetcher(cfg.Scrape, logger), cfg.Scrape.ProfilePath, logger)

	logger.Info("Starting profile import", "url", profileImportURL, "output_format", profileImportConfig.OutputFormat)
	canonical, err := importer.Import(cmd.Context(), profileImportURL, profileImportPath)
	if err != nil {
		return fmt.Errorf("failed to import profile: %w", err)
	}

	if err := common.NewOutputHandler(logger).HandleOutput(canonical, profileImportConfig); err != nil {
		return err
	}
	logger.Info("Profile imported successfully", "name", canonical.Name)
	return nil
}
