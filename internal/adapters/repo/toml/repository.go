package toml

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
)

const (
	catalogPathKey  = "game.catalog_path"
	catalogFileMode = 0o644
	catalogDirMode  = 0o755
	tempFilePattern = ".catalog-*.toml.tmp"
)

// CatalogRepository serves identities and AI instructions from a TOML file.
// The file is read once; a missing file falls back to built-in defaults.
type CatalogRepository struct {
	path string

	mu           sync.RWMutex
	instructions string
	identities   map[domain.Language][]string
}

var _ ports.Catalog = (*CatalogRepository)(nil)

func NewCatalogRepository(cfg *viper.Viper) (*CatalogRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := strings.TrimSpace(cfg.GetString(catalogPathKey))
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve catalog path: %w", err)
		}
		path = filepath.Clean(abs)
	}

	repo := &CatalogRepository{path: path}
	if err := repo.Reload(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *CatalogRepository) Path() string {
	return r.path
}

func (r *CatalogRepository) Identities(ctx context.Context, language domain.Language) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.identities[language]...), nil
}

func (r *CatalogRepository) Instructions(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.instructions, nil
}

// Reload rereads the catalog file and swaps the served content atomically.
func (r *CatalogRepository) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	schema, err := r.readSchema()
	if err != nil {
		return err
	}

	identities := make(map[domain.Language][]string, len(schema.Identities))
	for code, list := range schema.Identities {
		language, err := domain.ParseLanguage(code)
		if err != nil {
			return fmt.Errorf("catalog identities: %w", err)
		}
		identities[language] = append(identities[language], cleanIdentities(list)...)
	}
	for code, file := range schema.IdentityFiles {
		language, err := domain.ParseLanguage(code)
		if err != nil {
			return fmt.Errorf("catalog identity files: %w", err)
		}
		list, err := readIdentityFile(r.resolve(file))
		if err != nil {
			return err
		}
		identities[language] = append(identities[language], list...)
	}

	r.mu.Lock()
	r.instructions = schema.Instructions
	r.identities = identities
	r.mu.Unlock()

	return nil
}

// WriteDefault writes the built-in catalog to path, for editing.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("catalog file %s already exists", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat catalog file: %w", err)
		}
	}

	return writeSchema(path, defaultSchema())
}

func (r *CatalogRepository) readSchema() (catalogSchema, error) {
	if r.path == "" {
		return defaultSchema(), nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultSchema(), nil
		}
		return catalogSchema{}, fmt.Errorf("read catalog file: %w", err)
	}

	var schema catalogSchema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return catalogSchema{}, fmt.Errorf("decode catalog file: %w", err)
	}
	if err := schema.validateVersion(); err != nil {
		return catalogSchema{}, err
	}
	schema.applyDefaults()
	if len(schema.Identities) == 0 && len(schema.IdentityFiles) == 0 {
		schema.Identities = defaultSchema().Identities
	}

	return schema, nil
}

func (r *CatalogRepository) resolve(path string) string {
	if filepath.IsAbs(path) || r.path == "" {
		return path
	}

	return filepath.Join(filepath.Dir(r.path), path)
}

func readIdentityFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identity file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read identity file %s: %w", path, err)
	}

	list := cleanIdentities(lines)
	if len(list) == 0 {
		return nil, fmt.Errorf("identity file %s has no identities", path)
	}

	return list, nil
}

func cleanIdentities(lines []string) []string {
	list := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		list = append(list, trimmed)
	}

	return list
}

func writeSchema(path string, schema catalogSchema) error {
	schema.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(path), catalogDirMode); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode catalog file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp catalog file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp catalog file: %w", err)
	}

	if err := tempFile.Chmod(catalogFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp catalog file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp catalog file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	cleanup = false

	return nil
}
