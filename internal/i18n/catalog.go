// Package i18n translates the registry's message keys using
// golang.org/x/text, with messages loaded from HCL locale files:
//
//	messages "en-US" {
//	  command_notfound = "&cCommand not found!"
//	}
//
// Values are printf-style formats; '&' style codes are turned into chat
// markers when a message is stored.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/cmdgrid/internal/chat"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the locale every lookup falls back to.
const BaseLocale = "en-US"

//go:embed locales/*.hcl
var embeddedLocales embed.FS

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "messages", LabelNames: []string{"locale"}},
	},
}

// Catalog holds translated messages for any number of locales and
// implements registry.Translator for one active locale.
type Catalog struct {
	mu       sync.RWMutex
	base     language.Tag
	active   language.Tag
	messages map[language.Tag]map[string]string
	builder  *catalog.Builder
}

// New returns an empty catalog whose active locale is the base locale.
func New() *Catalog {
	base := language.MustParse(BaseLocale)
	return &Catalog{
		base:     base,
		active:   base,
		messages: make(map[language.Tag]map[string]string),
		builder:  catalog.NewBuilder(catalog.Fallback(base)),
	}
}

// Builtin returns a catalog loaded with the bundled locale files.
func Builtin() (*Catalog, error) {
	c := New()
	if err := c.LoadFS(embeddedLocales, "locales"); err != nil {
		return nil, err
	}
	return c, nil
}

// Set adds or replaces one message.
func (c *Catalog) Set(locale, key, msg string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("parse locale tag %q: %w", locale, err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("locale %s: message key cannot be blank", locale)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(tag, key, msg)
}

func (c *Catalog) setLocked(tag language.Tag, key, msg string) error {
	msg = chat.TranslateAlternateCodes(chat.AltMarker, msg)
	if err := c.builder.SetString(tag, key, msg); err != nil {
		return fmt.Errorf("locale %s: set %q: %w", tag, key, err)
	}
	m, ok := c.messages[tag]
	if !ok {
		m = make(map[string]string)
		c.messages[tag] = m
	}
	m[key] = msg
	return nil
}

// Load parses one locale file held in memory.
func (c *Catalog) Load(src []byte, filename string) error {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse locale file %s: %w", filename, diags)
	}
	return c.loadBody(file.Body, filename)
}

// LoadFS loads every .hcl file under dir in fsys.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	paths, err := fsutil.FindFiles(fsys, dir, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to list locale files in %s: %w", dir, err)
	}
	for _, path := range paths {
		src, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", path, err)
		}
		if err := c.Load(src, path); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir loads every .hcl file under dir. Later files override earlier
// ones key by key.
func (c *Catalog) LoadDir(ctx context.Context, dir string) error {
	logger := ctxlog.FromContext(ctx)

	paths, err := fsutil.FindFilesByExtension(dir, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to list locale files in %s: %w", dir, err)
	}

	parser := hclparse.NewParser()
	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse locale file %s: %w", path, diags)
		}
		if err := c.loadBody(file.Body, path); err != nil {
			return err
		}
	}
	logger.Debug("Loaded locale files.", "dir", dir, "count", len(paths), "locales", len(c.Locales()))
	return nil
}

func (c *Catalog) loadBody(body hcl.Body, filename string) error {
	content, diags := body.Content(fileSchema)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode locale file %s: %w", filename, diags)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, block := range content.Blocks {
		locale := block.Labels[0]
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("%s: parse locale tag %q: %w", block.DefRange, locale, err)
		}

		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("failed to decode locale file %s: %w", filename, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return fmt.Errorf("failed to decode locale file %s: %w", filename, diags)
			}
			if val.IsNull() || !val.Type().Equals(cty.String) {
				return fmt.Errorf("%s: message %q must be a string", attr.Range, name)
			}
			if err := c.setLocked(tag, name, val.AsString()); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetLocale switches the active locale. It reports false, and changes
// nothing, when locale is not a valid tag.
func (c *Catalog) SetLocale(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	c.mu.Lock()
	c.active = tag
	c.mu.Unlock()
	return true
}

// Locale returns the active locale.
func (c *Catalog) Locale() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active.String()
}

// Locales returns every locale that has at least one message, sorted.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.messages))
	for tag := range c.messages {
		out = append(out, tag.String())
	}
	sort.Strings(out)
	return out
}

// Message returns the unformatted message for key in the active locale,
// falling back to the base locale.
func (c *Catalog) Message(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, msg, ok := c.lookupLocked(key)
	return msg, ok
}

func (c *Catalog) lookupLocked(key string) (language.Tag, string, bool) {
	for _, tag := range []language.Tag{c.active, c.base} {
		if msg, ok := c.messages[tag][key]; ok {
			return tag, msg, true
		}
	}
	return language.Und, "", false
}

// Translate implements registry.Translator.
func (c *Catalog) Translate(key string, args ...any) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tag, _, ok := c.lookupLocked(key)
	if !ok {
		return "", false
	}
	return message.NewPrinter(tag, message.Catalog(c.builder)).Sprintf(key, args...), true
}
