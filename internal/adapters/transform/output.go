package transform

import (
	"encoding/json"

	"go.trai.ch/polish/internal/adapters/shell"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/zerr"
)

// eslintResult is the subset of an ESLint JSON report entry that carries fixes.
type eslintResult struct {
	FilePath string  `json:"filePath"`
	Output   *string `json:"output"`
}

// decodeOutput extracts the transformed text from a finished command.
// runErr is the command's error, if any.
func decodeOutput(format domain.OutputFormat, input string, res shell.Result, runErr error) (string, error) {
	switch format {
	case domain.OutputESLintJSON:
		// ESLint exits 1 when unfixable problems remain; the report is still valid.
		if runErr != nil && res.ExitCode != 1 {
			return "", runErr
		}
		var report []eslintResult
		if err := json.Unmarshal(res.Stdout, &report); err != nil {
			if runErr != nil {
				return "", runErr
			}
			return "", zerr.With(zerr.Wrap(err, "malformed eslint report"), "bytes", len(res.Stdout))
		}
		if len(report) == 0 || report[0].Output == nil {
			return input, nil
		}
		return *report[0].Output, nil
	default:
		if runErr != nil {
			return "", runErr
		}
		return string(res.Stdout), nil
	}
}
