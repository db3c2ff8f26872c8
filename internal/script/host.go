package script

import (
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/roach88/taleweave/internal/story"
)

// Host is the runtime context templates and scripts talk to.
// It is created once per runtime and lives for the process.
type Host interface {
	Document() *story.Document
	PassageByName(name string) (story.Passage, bool)
	PassageByID(id int) (story.Passage, bool)
	PassagesByTag(tag string) []story.Passage
	Render(name string) (string, error)
	ApplyExternalStylesValue(v any) error
	History() []string
}

// passageValue builds the read-only Starlark view of a passage.
func passageValue(p story.Passage) starlark.Value {
	tags := p.Tags()
	tagValues := make(starlark.Tuple, len(tags))
	for i, t := range tags {
		tagValues[i] = starlark.String(t)
	}
	return starlarkstruct.FromStringDict(starlark.String("passage"), starlark.StringDict{
		"id":     starlark.MakeInt(p.ID),
		"name":   starlark.String(p.Name),
		"tags":   tagValues,
		"source": starlark.String(p.Source),
	})
}

// storyValue builds the Starlark "story" object bound to host.
func storyValue(host Host) starlark.Value {
	doc := host.Document()

	passage := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		p, ok := host.PassageByName(name)
		if !ok {
			return starlark.None, nil
		}
		return passageValue(p), nil
	}

	passageByID := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var id int
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &id); err != nil {
			return nil, err
		}
		p, ok := host.PassageByID(id)
		if !ok {
			return starlark.None, nil
		}
		return passageValue(p), nil
	}

	passagesByTag := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var tag string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &tag); err != nil {
			return nil, err
		}
		ps := host.PassagesByTag(tag)
		elems := make([]starlark.Value, len(ps))
		for i, p := range ps {
			elems[i] = passageValue(p)
		}
		return starlark.NewList(elems), nil
	}

	render := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		out, err := host.Render(name)
		if err != nil {
			return nil, err
		}
		return starlark.String(out), nil
	}

	applyStyles := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var locators starlark.Value
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &locators); err != nil {
			return nil, err
		}
		if err := host.ApplyExternalStylesValue(ToGo(locators)); err != nil {
			return nil, err
		}
		return starlark.None, nil
	}

	history := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
			return nil, err
		}
		return ToStarlark(host.History()), nil
	}

	return starlarkstruct.FromStringDict(starlark.String("story"), starlark.StringDict{
		"name":                  starlark.String(doc.Name),
		"start":                 starlark.MakeInt(doc.StartNode),
		"creator":               starlark.String(doc.Creator),
		"creator_version":       starlark.String(doc.CreatorVersion),
		"ifid":                  starlark.String(doc.IFID),
		"passage":               starlark.NewBuiltin("passage", passage),
		"passage_by_id":         starlark.NewBuiltin("passage_by_id", passageByID),
		"passages_by_tag":       starlark.NewBuiltin("passages_by_tag", passagesByTag),
		"render":                starlark.NewBuiltin("render", render),
		"apply_external_styles": starlark.NewBuiltin("apply_external_styles", applyStyles),
		"history":               starlark.NewBuiltin("history", history),
	})
}
