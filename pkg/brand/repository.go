package brand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var reBrandID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileRepository reads brand data from a directory laid out as
//
//	<dir>/brands/<id>/brand-rules.json
//	<dir>/brands/<id>/scoring-rubric.json
//	<dir>/shared/grading-scale.json
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

func ValidID(brandID string) bool { return reBrandID.MatchString(brandID) }

func (r *FileRepository) rulesPath(brandID string) string {
	return filepath.Join(r.dir, "brands", brandID, "brand-rules.json")
}

func (r *FileRepository) RawRules(_ context.Context, brandID string) ([]byte, error) {
	if !ValidID(brandID) {
		return nil, ErrInvalidBrandID
	}
	b, err := os.ReadFile(r.rulesPath(brandID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("read brand rules: %w", err)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("brand rules for %s: invalid JSON", brandID)
	}
	return b, nil
}

func (r *FileRepository) Load(ctx context.Context, brandID string) (Data, error) {
	raw, err := r.RawRules(ctx, brandID)
	if err != nil {
		return Data{}, err
	}
	var d Data
	if err := json.Unmarshal(raw, &d.Rules); err != nil {
		return Data{}, fmt.Errorf("decode brand rules: %w", err)
	}
	d.Rules.Raw = raw

	if err := readJSON(filepath.Join(r.dir, "brands", brandID, "scoring-rubric.json"), &d.Rubric); err != nil {
		return Data{}, fmt.Errorf("scoring rubric: %w", err)
	}
	if err := readJSON(filepath.Join(r.dir, "shared", "grading-scale.json"), &d.Scale); err != nil {
		return Data{}, fmt.Errorf("grading scale: %w", err)
	}
	return d, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
