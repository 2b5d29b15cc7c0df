package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"example.com/adaptive-budget/backend/internal/config"
	"example.com/adaptive-budget/backend/internal/engine"
	"example.com/adaptive-budget/backend/internal/models"
	"example.com/adaptive-budget/backend/internal/server"
)

var errInvalidProfile = errors.New("profile is invalid")

type profileFlags struct {
	income     float64
	city       string
	familySize int
	age        int
	occupation string
	answers    []string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.income, "income", 0, "Monthly income")
	cmd.Flags().StringVar(&f.city, "city", "", "City of residence")
	cmd.Flags().IntVar(&f.familySize, "family-size", 1, "Number of people in the household")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&f.occupation, "occupation", "", "Occupation")
	cmd.Flags().StringArrayVar(&f.answers, "answer", nil, "Lifestyle answer as key=value (repeatable)")
}

func (f *profileFlags) profile() (models.UserProfile, error) {
	profile := models.UserProfile{
		MonthlyIncome: f.income,
		City:          f.city,
		FamilySize:    f.familySize,
		Age:           f.age,
		Occupation:    f.occupation,
	}

	if len(f.answers) > 0 {
		profile.LifestyleAnswers = make(map[string]string, len(f.answers))
		for _, answer := range f.answers {
			key, value, ok := strings.Cut(answer, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return models.UserProfile{}, fmt.Errorf("invalid --answer %q, expected key=value", answer)
			}
			profile.LifestyleAnswers[key] = strings.TrimSpace(value)
		}
	}

	return profile, nil
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	flags := &profileFlags{}
	var useAI bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a budget for a profile and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := flags.profile()
			if err != nil {
				return err
			}

			tables, err := root.loadTables()
			if err != nil {
				return err
			}

			aiConfig := config.AIConfig{Provider: "none"}
			if useAI {
				if aiConfig, err = config.LoadAI(); err != nil {
					return err
				}
			}

			logger := root.logger()
			insights, err := server.NewInsightSource(aiConfig, logger)
			if err != nil {
				return err
			}

			budgetEngine, err := engine.New(tables, insights, engine.WithLogger(logger))
			if err != nil {
				return err
			}

			budget, err := budgetEngine.Generate(cmd.Context(), profile)
			if err != nil {
				var validationErr *engine.InputValidationError
				if errors.As(err, &validationErr) {
					for _, message := range validationErr.Errors {
						fmt.Fprintln(cmd.ErrOrStderr(), message)
					}
					return errInvalidProfile
				}
				return err
			}

			return writeJSON(cmd.OutOrStdout(), budget)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&useAI, "ai", false, "Use the AI provider from the environment instead of templates only")

	return cmd
}

func newValidateCmd() *cobra.Command {
	flags := &profileFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a profile without generating a budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := flags.profile()
			if err != nil {
				return err
			}

			result := engine.ValidateInput(profile)
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.IsValid {
				return errInvalidProfile
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
