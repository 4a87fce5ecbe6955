// Package store keeps per-video detection artifacts on disk. Every write goes
// to a temp file in the same directory and is renamed into place, so readers
// see either the previous complete file or the new one.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/montager/internal/types"
)

type Cache struct {
	dir  string
	stem string
}

// Open returns the cache for a video under base. The directory name is
// derived from the file name, mtime and size so an edited video gets a
// fresh cache.
func Open(base, videoPath string) (*Cache, error) {
	st, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	name := filepath.Base(videoPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	key := hash(fmt.Sprintf("%s:%d:%d", name, st.ModTime().UnixNano(), st.Size()))

	dir := filepath.Join(base, stem+"-"+key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, stem: stem}, nil
}

func (c *Cache) Dir() string { return c.dir }

// Path names an artifact of the video, e.g. Path("preview.html").
func (c *Cache) Path(suffix string) string {
	return filepath.Join(c.dir, c.stem+"."+suffix)
}

func (c *Cache) LoadScene() (types.SceneData, bool, error) {
	var s types.SceneData
	ok, err := readJSON(c.Path("scene.json"), &s)
	return s, ok, err
}

func (c *Cache) SaveScene(s types.SceneData) (string, error) {
	p := c.Path("scene.json")
	return p, writeJSON(p, s)
}

func (c *Cache) LoadVoiceMap() (types.VoiceMapData, bool, error) {
	var v types.VoiceMapData
	ok, err := readJSON(c.Path("voicemap.json"), &v)
	return v, ok, err
}

func (c *Cache) SaveVoiceMap(v types.VoiceMapData) (string, error) {
	p := c.Path("voicemap.json")
	return p, writeJSON(p, v)
}

func readJSON(path string, v any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFileAtomic(path, append(b, '\n'))
}

func WriteFileAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
