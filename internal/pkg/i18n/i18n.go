package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

type Translations map[string]string

// Catalog holds the notification texts per locale with a single fallback locale.
type Catalog struct {
	mu       sync.RWMutex
	locales  map[string]Translations
	fallback string
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default returns the catalog compiled into the binary, falling back to Russian.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(embedded, "locales", "ru")
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded locales are broken: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads every <locale>.yaml under dir.
func Load(fsys fs.FS, dir, fallback string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	c := &Catalog{locales: make(map[string]Translations), fallback: fallback}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		locale := strings.TrimSuffix(entry.Name(), ".yaml")
		filePath := path.Join(dir, entry.Name())

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, err
		}

		var file struct {
			Notifications Translations `yaml:"NOTIFICATIONS"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
		}
		c.locales[locale] = file.Notifications
	}

	if _, ok := c.locales[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %q not found in %s", fallback, dir)
	}
	return c, nil
}

func (c *Catalog) Fallback() string {
	return c.fallback
}

func (c *Catalog) HasLocale(locale string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.locales[locale]
	return ok
}

// Lookup tries locale first, then the fallback locale.
func (c *Catalog) Lookup(locale, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if trans, ok := c.locales[locale]; ok {
		if val, ok := trans[key]; ok && val != "" {
			return val, true
		}
	}

	if locale != c.fallback {
		if val, ok := c.locales[c.fallback][key]; ok && val != "" {
			return val, true
		}
	}

	return "", false
}

// Translate is Lookup that returns the key itself when nothing matches.
func (c *Catalog) Translate(locale, key string) string {
	if val, ok := c.Lookup(locale, key); ok {
		return val
	}
	return key
}
