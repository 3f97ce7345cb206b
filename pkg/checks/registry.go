package checks

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrInvalidCheckType is returned when a checker name is not registered.
	ErrInvalidCheckType = errors.New("invalid check type")

	// ErrDuplicateChecker is returned when two checkers share a name.
	ErrDuplicateChecker = errors.New("duplicate checker name")
)

// Registry maps checker names to their constructors. Names are unique across
// metadata and graphic checkers so a single list can select from both.
type Registry struct {
	metadata      map[string]MetadataEntry
	graphic       map[string]GraphicEntry
	metadataOrder []string
	graphicOrder  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		metadata: make(map[string]MetadataEntry),
		graphic:  make(map[string]GraphicEntry),
	}
}

func (r *Registry) taken(name string) bool {
	_, m := r.metadata[name]
	_, g := r.graphic[name]
	return m || g
}

// RegisterMetadata adds a part document checker.
func (r *Registry) RegisterMetadata(e MetadataEntry) error {
	if e.Name == "" || e.New == nil {
		return fmt.Errorf("registering metadata checker %q: name and constructor are required", e.Name)
	}
	if r.taken(e.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, e.Name)
	}
	r.metadata[e.Name] = e
	r.metadataOrder = append(r.metadataOrder, e.Name)
	return nil
}

// RegisterGraphic adds a graphic checker.
func (r *Registry) RegisterGraphic(e GraphicEntry) error {
	if e.Name == "" || e.New == nil {
		return fmt.Errorf("registering graphic checker %q: name and constructor are required", e.Name)
	}
	if r.taken(e.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, e.Name)
	}
	r.graphic[e.Name] = e
	r.graphicOrder = append(r.graphicOrder, e.Name)
	return nil
}

// Metadata looks up a part document checker by exact name.
func (r *Registry) Metadata(name string) (MetadataEntry, error) {
	e, ok := r.metadata[name]
	if !ok {
		return MetadataEntry{}, fmt.Errorf("%w: %s", ErrInvalidCheckType, name)
	}
	return e, nil
}

// Graphic looks up a graphic checker by exact name.
func (r *Registry) Graphic(name string) (GraphicEntry, error) {
	e, ok := r.graphic[name]
	if !ok {
		return GraphicEntry{}, fmt.Errorf("%w: %s", ErrInvalidCheckType, name)
	}
	return e, nil
}

// MetadataNames returns the part document checker names in registration order.
func (r *Registry) MetadataNames() []string {
	return append([]string(nil), r.metadataOrder...)
}

// GraphicNames returns the graphic checker names in registration order.
func (r *Registry) GraphicNames() []string {
	return append([]string(nil), r.graphicOrder...)
}

// Descriptors returns every registered descriptor sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.metadata)+len(r.graphic))
	for _, e := range r.metadata {
		out = append(out, e.Descriptor)
	}
	for _, e := range r.graphic {
		out = append(out, e.Descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Split sorts the requested names into metadata and graphic checker lists,
// keeping their order. The name "all" selects every registered checker.
// Unknown names fail with ErrInvalidCheckType.
func (r *Registry) Split(names []string) (metadata, graphic []string, err error) {
	var errs []error
	for _, name := range names {
		switch {
		case name == "all":
			metadata = append(metadata, r.metadataOrder...)
			graphic = append(graphic, r.graphicOrder...)
		case r.metadata[name].New != nil:
			metadata = append(metadata, name)
		case r.graphic[name].New != nil:
			graphic = append(graphic, name)
		default:
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidCheckType, name))
		}
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return metadata, graphic, nil
}

var (
	extMu             sync.Mutex
	metadataExtension []MetadataEntry
	graphicExtension  []GraphicEntry
)

// RegisterExtension records a metadata checker provided by an extension
// package. Extension packages call it from init; the entries are validated
// when Default builds the registry.
func RegisterExtension(e MetadataEntry) {
	extMu.Lock()
	defer extMu.Unlock()
	metadataExtension = append(metadataExtension, e)
}

// RegisterGraphicExtension records a graphic checker provided by an
// extension package.
func RegisterGraphicExtension(e GraphicEntry) {
	extMu.Lock()
	defer extMu.Unlock()
	graphicExtension = append(graphicExtension, e)
}

// Default builds the registry from the built-in checkers followed by every
// registered extension. All registration problems are reported together.
func Default() (*Registry, error) {
	extMu.Lock()
	defer extMu.Unlock()

	r := NewRegistry()
	var errs []error
	for _, e := range builtinMetadata() {
		if err := r.RegisterMetadata(e); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range metadataExtension {
		if err := r.RegisterMetadata(e); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range builtinGraphic() {
		if err := r.RegisterGraphic(e); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range graphicExtension {
		if err := r.RegisterGraphic(e); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("checker registry: %w", errors.Join(errs...))
	}
	return r, nil
}

func builtinMetadata() []MetadataEntry {
	return []MetadataEntry{
		missingTagsEntry,
		connectorTerminalEntry,
		connectorVisibilityEntry,
		pcbConnectorStrokeEntry,
		moduleIDSpecialCharsEntry,
		fritzingVersionEntry,
		moduleIDEntry,
		versionEntry,
		titleEntry,
		descriptionEntry,
		authorEntry,
		viewsEntry,
		busIDEntry,
		busNodesEntry,
		connectorLayersEntry,
		familyPropertyEntry,
		uniquePropertyNamesEntry,
		propertyFieldsEntry,
		requiredTagsEntry,
		busesEntry,
		layerIDsEntry,
	}
}

func builtinGraphic() []GraphicEntry {
	return []GraphicEntry{
		fontSizeEntry,
		fontTypeEntry,
		viewBoxEntry,
		idsEntry,
		matrixEntry,
		layerNestingEntry,
	}
}
