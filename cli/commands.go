package cli

// Version and CommitSHA are set via ldflags when building.
var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands. Flags override
// the values read from the environment and the env file.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for the pipeline stages."`
	Debug     bool   `help:"Enable debug logging."`
	EnvFile   string `help:"Load environment variables from this file instead of .env." type:"path" name:"env-file"`
	Journal   string `help:"hledger journal file (defaults to $LEDGER_FILE)." short:"f" type:"path"`
	DataDir   string `help:"Directory the JSON documents are written to (defaults to $FINBOARD_DATA_DIR or ./data)." type:"path" name:"data-dir"`
	Budgets   string `help:"Budget configuration file, JSON or YAML (defaults to <data-dir>/budgets-config.json)." type:"path"`
	Hledger   string `help:"hledger binary (defaults to $HLEDGER_BIN or hledger)."`
}

type Commands struct {
	Globals

	Generate    GenerateCmd    `cmd:"" default:"1" help:"Generate every dashboard document (transform, trends and budgets)."`
	Transform   TransformCmd   `cmd:"" help:"Classify transactions and write the finance documents."`
	Trends      TrendsCmd      `cmd:"" help:"Analyse monthly and category trends."`
	Budgets     BudgetsCmd     `cmd:"" help:"Track spending against the configured budgets."`
	BudgetsInit BudgetsInitCmd `cmd:"" name:"budgets-init" help:"Write the default budget configuration."`
	Watch       WatchCmd       `cmd:"" help:"Regenerate the documents whenever the journal changes."`
	Serve       ServeCmd       `cmd:"" help:"Serve the generated documents over HTTP."`
	Doctor      DoctorCmd      `cmd:"" help:"Doctor utilities for debugging the pipeline."`
}
