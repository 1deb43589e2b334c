package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

const versionLayout = "20060102150405"

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9]+`)

	sqlTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}} ({{.Version}})
-- +goose Up
-- +goose StatementBegin
SELECT 'up {{.Name}}';
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
SELECT 'down {{.Name}}';
-- +goose StatementEnd
`))
)

type migrationFile struct {
	Name    string
	Version string
}

// CreateSQLMigration writes <dir>/<version>_<name>.sql where version is now
// in UTC. An existing file with the same name is an error.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("migrations dir is required")
	}
	file := migrationFile{Name: slug(name), Version: now.UTC().Format(versionLayout)}
	if file.Name == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, file.Version+"_"+file.Name+".sql")
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("migration already exists: %s", path)
	}
	if err != nil {
		return "", err
	}
	if err := errors.Join(sqlTemplate.Execute(out, file), out.Close()); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// slug lowercases name and collapses every run of other characters to "_".
func slug(name string) string {
	s := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(s, "_")
}
