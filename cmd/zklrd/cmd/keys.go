package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zklr-network/zklr/x/zklr/circuits"
	"github.com/zklr-network/zklr/x/zklr/types"
)

const flagMinStake = "min-stake"

// KeysCmd returns the Groth16 key management commands
func KeysCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the eligibility circuit keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(keysSetupCmd(cctx), keysProveCmd(cctx))
	return cmd
}

func keysSetupCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Compile the eligibility circuit and write a development key pair",
		Long: `Compile the eligibility circuit and run a local Groth16 setup, writing the
verifying key and proving key under <home>/config. The keys come from a
single-party setup and are suitable for development networks only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := cctx.config

			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			if !overwrite && fileExists(cfg.VerifyingKeyFile()) {
				return fmt.Errorf("verifying key already exists: %s", cfg.VerifyingKeyFile())
			}
			if err := os.MkdirAll(cfg.ConfigDir(), 0o755); err != nil {
				return fmt.Errorf("failed to create config dir: %w", err)
			}

			keys, err := circuits.Setup()
			if err != nil {
				return err
			}

			if err := writeKeyFile(cfg.VerifyingKeyFile(), 0o644, func(f *os.File) error {
				return circuits.WriteVerifyingKey(f, keys.VK)
			}); err != nil {
				return err
			}
			if err := writeKeyFile(cfg.ProvingKeyFile(), 0o600, func(f *os.File) error {
				return circuits.WriteProvingKey(f, keys.PK)
			}); err != nil {
				return err
			}

			cctx.logger.Info("wrote eligibility keys", "constraints", keys.CCS.GetNbConstraints())
			fmt.Fprintf(cmd.OutOrStdout(), "Verifying key written to %s\n", cfg.VerifyingKeyFile())
			return nil
		},
	}
	cmd.Flags().Bool(flagOverwrite, false, "overwrite existing keys")
	return cmd
}

func keysProveCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prove [secret] [stake]",
		Short: "Produce an eligibility proof for a committed stake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid secret: %w", err)
			}
			stake, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			minStake, _ := cmd.Flags().GetUint64(flagMinStake)

			f, err := os.Open(cctx.config.ProvingKeyFile())
			if err != nil {
				return fmt.Errorf("failed to open proving key: %w", err)
			}
			defer f.Close()

			prover, err := circuits.LoadProver(f)
			if err != nil {
				return err
			}
			proof, err := prover.Prove(secret, stake, minStake)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(proof))
			return err
		},
	}
	cmd.Flags().Uint64(flagMinStake, types.DefaultMinConfidentialStake, "minimum confidential stake the proof is bound to")
	return cmd
}

func writeKeyFile(path string, perm os.FileMode, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
