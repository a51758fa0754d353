package text

import (
	"fmt"
	"sort"
	"sync"
)

// The transform and tokenizer registries are process-wide and populated at
// init by transforms.go. External packages may register additional functions
// before pipelines are resolved, following the database/sql driver pattern.

var (
	registryMu sync.RWMutex
	transforms = map[string]Transform{}
	tokenizers = map[string]Tokenizer{}
)

// RegisterTransform makes a transform resolvable by name. It panics if the
// name is already taken, which points at a programming error during init.
func RegisterTransform(name string, fn Transform) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := transforms[name]; dup {
		panic(fmt.Sprintf("text: RegisterTransform called twice for %q", name))
	}
	transforms[name] = fn
}

// RegisterTokenizer makes a tokenizer resolvable by name. It panics on a
// duplicate name.
func RegisterTokenizer(name string, fn Tokenizer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := tokenizers[name]; dup {
		panic(fmt.Sprintf("text: RegisterTokenizer called twice for %q", name))
	}
	tokenizers[name] = fn
}

// ResolveTransforms resolves an ordered list of transform names. Unknown
// names produce an error listing the valid alternatives.
func ResolveTransforms(names []string) ([]NamedTransform, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	resolved := make([]NamedTransform, 0, len(names))
	for _, name := range names {
		fn, ok := transforms[name]
		if !ok {
			return nil, fmt.Errorf("text: unknown transform %q; registered: %v", name, sortedKeys(transforms))
		}
		resolved = append(resolved, NamedTransform{Name: name, Fn: fn})
	}
	return resolved, nil
}

// ResolveTokenizer resolves a tokenizer by name. The empty name resolves to
// a zero NamedTokenizer, which StagedText treats as whitespace splitting.
func ResolveTokenizer(name string) (NamedTokenizer, error) {
	if name == "" {
		return NamedTokenizer{}, nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := tokenizers[name]
	if !ok {
		return NamedTokenizer{}, fmt.Errorf("text: unknown tokenizer %q; registered: %v", name, sortedKeys(tokenizers))
	}
	return NamedTokenizer{Name: name, Fn: fn}, nil
}

// TransformNames returns the registered transform names, sorted.
func TransformNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedKeys(transforms)
}

// TokenizerNames returns the registered tokenizer names, sorted.
func TokenizerNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedKeys(tokenizers)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
