package config

import "github.com/joho/godotenv"

type AppConfig struct {
	Terminal TerminalConfig
	Log      LogConfig
	Print    PrintConfig
	Prefs    PrefsConfig
}

// LoadApp reads an optional .env file and then every config section from the environment.
// Variables already set in the environment win over .env entries.
func LoadApp() (AppConfig, error) {
	_ = godotenv.Load()

	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	terminalCfg, err := LoadTerminal()
	if err != nil {
		return AppConfig{}, err
	}
	printCfg, err := LoadPrint()
	if err != nil {
		return AppConfig{}, err
	}
	prefsCfg, err := LoadPrefs()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Terminal: terminalCfg,
		Log:      logCfg,
		Print:    printCfg,
		Prefs:    prefsCfg,
	}, nil
}
