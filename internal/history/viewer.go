package history

import (
	"errors"
	"fmt"

	"gosshub/client/internal/model"
)

type Mode int

const (
	ModeLatest Mode = iota
	ModeHistorical
	ModeEditing
	// ModeMissing is entered when the requested hash matches no version.
	ModeMissing
)

func (m Mode) String() string {
	switch m {
	case ModeLatest:
		return "latest"
	case ModeHistorical:
		return "historical"
	case ModeEditing:
		return "editing"
	case ModeMissing:
		return "missing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

var (
	ErrVersionNotFound = errors.New("version not found")
	ErrNotLatest       = errors.New("only the latest version can be edited")
	ErrNotEditing      = errors.New("not editing")
	ErrNotHistorical   = errors.New("only a previous version can be restored")
)

// Submission is the body and tag set to send as a new transformation.
type Submission struct {
	Body string
	Tags []string
}

// Viewer tracks which version of one document is on screen. It never talks
// to the network: saves hand back a Submission and the caller reloads the
// viewer with the freshly fetched sequence.
type Viewer struct {
	transformations []model.Transformation
	index           int
	mode            Mode
	draft           Submission
}

// NewViewer opens transformations at hash, or at the latest version when hash
// is empty. An unknown hash leaves the viewer in ModeMissing.
func NewViewer(transformations []model.Transformation, hash string) *Viewer {
	v := &Viewer{transformations: transformations}
	v.show(ResolveInitialIndex(transformations, hash))
	return v
}

func (v *Viewer) show(index int) {
	switch {
	case index == NotFound || index >= len(v.transformations):
		v.index = NotFound
		v.mode = ModeMissing
	case index == 0:
		v.index = 0
		v.mode = ModeLatest
	default:
		v.index = index
		v.mode = ModeHistorical
	}
}

// Reload replaces the sequence after a save and returns to the latest version.
func (v *Viewer) Reload(transformations []model.Transformation) {
	v.transformations = transformations
	v.draft = Submission{}
	v.show(0)
}

func (v *Viewer) Mode() Mode {
	return v.mode
}

func (v *Viewer) Index() int {
	return v.index
}

func (v *Viewer) Len() int {
	return len(v.transformations)
}

// Current returns the version on screen.
func (v *Viewer) Current() (model.Transformation, error) {
	if v.mode == ModeMissing {
		return model.Transformation{}, ErrVersionNotFound
	}
	return v.transformations[v.index], nil
}

func (v *Viewer) navigable() bool {
	return v.mode == ModeLatest || v.mode == ModeHistorical
}

func (v *Viewer) HasOlder() bool {
	return v.navigable() && Step(v.transformations, v.index, 1) != v.index
}

func (v *Viewer) HasNewer() bool {
	return v.navigable() && Step(v.transformations, v.index, -1) != v.index
}

// Older moves one version back in time. It reports whether the view moved.
func (v *Viewer) Older() bool {
	return v.step(1)
}

// Newer moves one version forward in time. It reports whether the view moved.
func (v *Viewer) Newer() bool {
	return v.step(-1)
}

func (v *Viewer) step(delta int) bool {
	if !v.navigable() {
		return false
	}
	next := Step(v.transformations, v.index, delta)
	if next == v.index {
		return false
	}
	v.show(next)
	return true
}

// OldestVersion jumps straight to the first recorded version.
func (v *Viewer) OldestVersion() bool {
	if !v.navigable() {
		return false
	}
	v.show(Oldest(v.transformations))
	return true
}

// NewestVersion jumps to the latest version. It also leaves ModeMissing.
func (v *Viewer) NewestVersion() bool {
	if v.mode == ModeEditing || len(v.transformations) == 0 {
		return false
	}
	v.show(Newest(v.transformations))
	return true
}

// Goto shows the version carrying hash. An unknown hash moves the viewer to
// ModeMissing and returns ErrVersionNotFound.
func (v *Viewer) Goto(hash string) error {
	if v.mode == ModeEditing {
		return ErrNotLatest
	}
	v.show(ResolveInitialIndex(v.transformations, hash))
	if v.mode == ModeMissing {
		return fmt.Errorf("%w: %s", ErrVersionNotFound, hash)
	}
	return nil
}

// Edit opens the editor on the latest version.
func (v *Viewer) Edit() error {
	if v.mode != ModeLatest {
		return ErrNotLatest
	}
	latest := v.transformations[0]
	v.draft = Submission{Body: latest.Body, Tags: append([]string(nil), latest.Tags...)}
	v.mode = ModeEditing
	return nil
}

func (v *Viewer) SetDraft(body string, tags []string) error {
	if v.mode != ModeEditing {
		return ErrNotEditing
	}
	v.draft = Submission{Body: body, Tags: append([]string(nil), tags...)}
	return nil
}

func (v *Viewer) Draft() (Submission, bool) {
	return v.draft, v.mode == ModeEditing
}

// Submit returns the draft to save. changed is false when the draft matches
// the latest version, in which case nothing should be written and the editor
// stays open.
func (v *Viewer) Submit() (submission Submission, changed bool, err error) {
	if v.mode != ModeEditing {
		return Submission{}, false, ErrNotEditing
	}
	if Unchanged(v.transformations[0], v.draft.Body, v.draft.Tags) {
		return Submission{}, false, nil
	}
	return v.draft, true, nil
}

// Cancel leaves the editor without saving.
func (v *Viewer) Cancel() error {
	if v.mode != ModeEditing {
		return ErrNotEditing
	}
	v.draft = Submission{}
	v.show(0)
	return nil
}

// Restore returns a submission that copies the version on screen into a new
// latest version.
func (v *Viewer) Restore() (Submission, error) {
	if v.mode != ModeHistorical {
		return Submission{}, ErrNotHistorical
	}
	current := v.transformations[v.index]
	return Submission{Body: current.Body, Tags: append([]string(nil), current.Tags...)}, nil
}

// Position is the 1-based version number on screen and the version count.
func (v *Viewer) Position() (int, int) {
	if v.mode == ModeMissing {
		return 0, len(v.transformations)
	}
	return v.index + 1, len(v.transformations)
}

// Path is the shareable location of the version on screen. The hash is only
// included for previous versions.
func (v *Viewer) Path(uuid string) string {
	base := "/document/" + uuid
	switch v.mode {
	case ModeHistorical:
		return base + "/hash/" + v.transformations[v.index].Hash
	case ModeEditing:
		return base + "/edit"
	default:
		return base
	}
}
