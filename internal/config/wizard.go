package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/boulevard/internal/pages"
)

// RunWizard runs an interactive configuration wizard and saves the
// resulting Config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to boulevard! Let's connect your site to its content.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Content source.
	sourcePrompt := promptui.Select{
		Label: "Where does content come from?",
		Items: []string{
			"Kontent.ai environment",
			"Local content directory",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("source selection: %w", err)
	}

	if sourceIdx == 0 {
		// 2. Environment and keys.
		envPrompt := promptui.Prompt{
			Label:    "Environment ID",
			Validate: required("environment id"),
		}
		if cfg.EnvironmentID, err = envPrompt.Run(); err != nil {
			return nil, fmt.Errorf("environment id: %w", err)
		}

		previewPrompt := promptui.Prompt{
			Label: "Preview API key (leave blank to set BOULEVARD_PREVIEW_API_KEY later)",
			Mask:  '*',
		}
		if cfg.PreviewAPIKey, err = previewPrompt.Run(); err != nil {
			return nil, fmt.Errorf("preview api key: %w", err)
		}

		keyPrompt := promptui.Prompt{
			Label: "Secure access API key (optional)",
			Mask:  '*',
		}
		if cfg.APIKey, err = keyPrompt.Run(); err != nil {
			return nil, fmt.Errorf("api key: %w", err)
		}
	} else {
		dirPrompt := promptui.Prompt{
			Label:   "Content directory",
			Default: "content",
			Validate: func(s string) error {
				if _, err := os.Stat(s); err != nil {
					return fmt.Errorf("content directory: %w", err)
				}
				return nil
			},
		}
		if cfg.ContentDir, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("content dir: %w", err)
		}
	}

	// 3. Collection and language.
	collectionPrompt := promptui.Prompt{
		Label:    "Default collection",
		Default:  pages.DefaultCollection,
		Validate: required("collection"),
	}
	if cfg.DefaultCollection, err = collectionPrompt.Run(); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}

	languagePrompt := promptui.Select{
		Label: "Default language",
		Items: []string{"default", "en-US", "es-ES"},
	}
	if _, cfg.DefaultLanguage, err = languagePrompt.Run(); err != nil {
		return nil, fmt.Errorf("language selection: %w", err)
	}

	// 4. Port.
	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			if _, err := strconv.Atoi(s); err != nil {
				return fmt.Errorf("port must be a number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ContentDir == "" && cfg.PreviewAPIKey == "" {
		fmt.Printf("\nNote: Set %sPREVIEW_API_KEY before opening pages with ?preview=true.\n", EnvPrefix)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}
