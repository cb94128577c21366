package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sort"

	"github.com/charmbracelet/log"
)

// PluginSymbol is the function every controller plugin exports.
const PluginSymbol = "Register"

// RegisterFunc is the signature of PluginSymbol.
type RegisterFunc = func(f *Factory, args []string) error

// LoadPlugins opens every *.so in dir in name order and calls its
// Register function. Plugins that fail to open are logged and skipped; a
// plugin with a wrong symbol or a failing Register aborts loading.
func LoadPlugins(dir string, f *Factory, args []string, logger *log.Logger) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.so"))
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("plugin dir: %w", err)
	}
	sort.Strings(paths)

	loaded := 0
	for _, path := range paths {
		p, err := plugin.Open(path)
		if err != nil {
			logger.Error("couldn't load plugin", "path", path, "err", err)
			continue
		}
		if err := registerPlugin(p, f, args); err != nil {
			return loaded, fmt.Errorf("%s: %w", path, err)
		}
		logger.Info("loaded plugin", "path", path)
		loaded++
	}
	return loaded, nil
}

type symbolLookup interface {
	Lookup(name string) (plugin.Symbol, error)
}

func registerPlugin(p symbolLookup, f *Factory, args []string) error {
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPlugin, err)
	}
	fn, ok := sym.(RegisterFunc)
	if !ok {
		if ptr, isPtr := sym.(*RegisterFunc); isPtr && ptr != nil {
			fn, ok = *ptr, true
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s has type %T", ErrBadPlugin, PluginSymbol, sym)
	}
	return fn(f, args)
}
