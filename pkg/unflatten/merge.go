package unflatten

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/convert"
	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
	"github.com/ukaji3/unflatten-go/pkg/unflatten/tree"
)

// idField is a populated identifier column of a child row.
type idField struct {
	path    string
	context string
	value   string
}

// merger holds the record trees of one run, one root group per root id.
type merger struct {
	opts     Options
	idName   string
	mainName string
	conv     *convert.Converter
	diag     *diagnostics

	rootOrder []string
	roots     map[string]*models.MultiMap
}

func (m *merger) group(rootKey string) *models.MultiMap {
	g, ok := m.roots[rootKey]
	if !ok {
		g = models.NewMultiMap(m.idName, true)
		m.roots[rootKey] = g
		m.rootOrder = append(m.rootOrder, rootKey)
	}
	return g
}

// guard runs fn for one row, turning errors and panics into a RowError.
func (m *merger) guard(sheet string, row int, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rowErr := NewRowError(sheet, row, fmt.Errorf("panic: %v", r))
			rowErr.Stack = debug.Stack()
			err = rowErr
		}
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				attrs := []any{"sheet", sheet, "row", row, "error", rowErr.Err}
				if len(rowErr.Stack) > 0 {
					attrs = append(attrs, "stack", string(rowErr.Stack))
				}
				m.diag.logger.Error("An error occurred whilst parsing a line", attrs...)
			}
		}
	}()
	if ferr := fn(); ferr != nil {
		return NewRowError(sheet, row, ferr)
	}
	return nil
}

// mainPass adds every main sheet row to the root group of its root id.
func (m *merger) mainPass(sheet models.Sheet) error {
	rowNum := 1
	for row, err := range sheet.Rows() {
		if err != nil {
			return fmt.Errorf("reading sheet %q: %w", sheet.Name(), err)
		}
		rowNum++
		if row.IsEmpty() {
			continue
		}
		m.diag.at(sheet.Name(), rowNum)
		if err := m.guard(sheet.Name(), rowNum, func() error { return m.addMainRow(row) }); err != nil {
			return err
		}
	}
	m.diag.logger.Debug("main sheet read", "sheet", sheet.Name(), "rows", rowNum-1)
	return nil
}

func (m *merger) addMainRow(row *models.Row) error {
	rootKey := ""
	if m.opts.RootID != "" {
		v, ok := row.Get(m.opts.RootID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrRootIDColumnMissing, m.opts.RootID)
		}
		rootKey = models.KeyText(v)
	}
	typed, err := m.conv.Row(row)
	if err != nil {
		return err
	}
	obj, err := tree.UnflattenRow(typed, m.idName)
	if err != nil {
		return err
	}
	m.group(rootKey).Append(obj)
	return nil
}

// childPass merges the rows of a child sheet into the main sheet records.
func (m *merger) childPass(sheet models.Sheet) error {
	rowNum := 1
	for row, err := range sheet.Rows() {
		if err != nil {
			return fmt.Errorf("reading sheet %q: %w", sheet.Name(), err)
		}
		rowNum++
		if row.IsEmpty() {
			continue
		}
		m.diag.at(sheet.Name(), rowNum)
		if err := m.guard(sheet.Name(), rowNum, func() error { return m.addChildRow(sheet.Name(), rowNum, row) }); err != nil {
			return err
		}
	}
	m.diag.logger.Debug("sub sheet read", "sheet", sheet.Name(), "rows", rowNum-1)
	return nil
}

func (m *merger) addChildRow(sheetName string, rowNum int, row *models.Row) error {
	var ids []idField
	data := models.NewRow()
	for _, column := range row.Columns() {
		v, _ := row.Get(column)
		path, tag := convert.SplitColumn(column)
		if m.isIDColumn(path) {
			if !models.IsEmptyValue(v) {
				ids = append(ids, idField{path: path, context: tag, value: models.KeyText(v)})
			}
			continue
		}
		if m.opts.RootID != "" && column == m.opts.RootID {
			continue
		}
		data.Set(column, v)
	}

	if len(ids) == 0 {
		m.diag.warn(WarnNoParentID, "", fmt.Sprintf(
			"Line %d of sheet %s has no parent id fields populated, skipping.", rowNum, sheetName))
		return nil
	}

	deepest, ok := deepestIDField(ids)
	if !ok {
		m.diag.warn(WarnConflictingIDs, "", fmt.Sprintf(
			"Multiple conflicting ID fields have been filled in on line %d of sheet %s, skipping that line.", rowNum, sheetName))
		return nil
	}

	root, err := m.rootFor(row, ids)
	if err != nil {
		if !errors.Is(err, errMissingParent) {
			return err
		}
		m.diag.warn(WarnMissingParent, m.opts.RootID, fmt.Sprintf(
			"%v on line %d of sheet %s, skipping.", err, rowNum, sheetName))
		return nil
	}

	byPath := make(map[string]string, len(ids))
	for _, f := range ids {
		byPath[f.path] = f.value
	}
	idSegments := tree.SplitPath(deepest.path)
	parentPath := idSegments[:len(idSegments)-1]

	top := models.NewObject()
	top.Set(strings.TrimSuffix(parentPath[0], tree.ArraySuffix), root)
	container, err := tree.Resolve(top, parentPath, tree.ResolveOptions{IDs: byPath, IDName: m.idName, Top: true})
	if err != nil {
		return err
	}

	contextName := deepest.context
	if contextName == "" {
		contextName = sheetName
	}
	contextSegments := tree.SplitPath(contextName)
	container, err = tree.Resolve(container, contextSegments[:len(contextSegments)-1], tree.ResolveOptions{IDName: m.idName})
	if err != nil {
		return err
	}

	prefix := append(append([]string{}, parentPath...), contextSegments...)
	typed, err := m.conv.Row(relativeTo(data, prefix))
	if err != nil {
		return err
	}
	unflattened, err := tree.UnflattenRow(typed, m.idName)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(contextSegments[len(contextSegments)-1], tree.ArraySuffix)
	var target *models.MultiMap
	switch existing, _ := container.Get(base); node := existing.(type) {
	case nil:
		target = models.NewMultiMap(m.idName, false)
		container.Set(base, target)
	case *models.MultiMap:
		target = node
		if node.TopSheet {
			// Data rolled up into the main sheet is replaced by the sub sheet.
			if rolled, ok := node.Lookup(models.AbsentKey); !ok || !models.Equal(rolled, unflattened) {
				m.diag.warn(WarnSubSheetConflict, "", fmt.Sprintf(
					"Conflict between main sheet and sub sheet %s, using values from sub sheet", base))
			}
			target = models.NewMultiMap(m.idName, false)
			container.Set(base, target)
		}
	default:
		return fmt.Errorf("%w: %q is not a repeating group", tree.ErrPathConflict, contextName)
	}
	target.Append(unflattened)
	return nil
}

// isIDColumn reports whether path is an identifier column of the main sheet.
func (m *merger) isIDColumn(path string) bool {
	if !strings.HasSuffix(path, "/"+m.idName) {
		return false
	}
	first := strings.TrimSuffix(tree.SplitPath(path)[0], tree.ArraySuffix)
	return strings.EqualFold(first, m.mainName)
}

// rootFor picks the root group a child row belongs to.
func (m *merger) rootFor(row *models.Row, ids []idField) (*models.MultiMap, error) {
	if m.opts.RootID == "" {
		return m.group(""), nil
	}

	v, has := row.Get(m.opts.RootID)
	if has && !models.IsEmptyValue(v) {
		key := models.KeyText(v)
		if g, ok := m.roots[key]; ok {
			return g, nil
		}
		return nil, fmt.Errorf("%w: no main sheet record has %s %q", errMissingParent, m.opts.RootID, key)
	}
	if has {
		if g, ok := m.roots[""]; ok {
			return g, nil
		}
	}

	for _, f := range ids {
		if len(tree.SplitPath(f.path)) != 2 {
			continue
		}
		for _, key := range m.rootOrder {
			if _, ok := m.roots[key].Lookup(models.KeyOf(f.value)); ok {
				return m.roots[key], nil
			}
		}
	}
	if len(m.rootOrder) == 1 {
		return m.roots[m.rootOrder[0]], nil
	}
	return nil, fmt.Errorf("%w: the parent id field %q was expected, but not present", errMissingParent, m.opts.RootID)
}

// finalize materializes every root group, in root id order.
func (m *merger) finalize() models.Array {
	var out models.Array
	for _, key := range m.rootOrder {
		out = append(out, tree.FinalizeGroup(m.roots[key])...)
	}
	return out
}

// deepestIDField returns the populated identifier with the most segments.
// Every other identifier must agree with it on all but its last segment.
func deepestIDField(fields []idField) (idField, bool) {
	deepest := fields[0]
	want := tree.SplitPath(deepest.path)
	for _, f := range fields[1:] {
		if segs := tree.SplitPath(f.path); len(segs) > len(want) {
			deepest, want = f, segs
		}
	}
	for _, f := range fields {
		segs := tree.SplitPath(f.path)
		for i, s := range segs[:len(segs)-1] {
			if want[i] != s {
				return idField{}, false
			}
		}
	}
	return deepest, true
}

// relativeTo strips prefix from data columns that repeat it, ignoring "[]"
// markers, so child sheets may use either relative or full column paths.
func relativeTo(data *models.Row, prefix []string) *models.Row {
	out := models.NewRow()
	for _, column := range data.Columns() {
		v, _ := data.Get(column)
		path, tag := convert.SplitColumn(column)
		segs := tree.SplitPath(path)
		if len(segs) > len(prefix) && samePath(segs[:len(prefix)], prefix) {
			column = strings.Join(segs[len(prefix):], "/")
			if tag != "" {
				column += ":" + tag
			}
		}
		out.Set(column, v)
	}
	return out
}

func samePath(a, b []string) bool {
	for i := range a {
		if strings.TrimSuffix(a[i], tree.ArraySuffix) != strings.TrimSuffix(b[i], tree.ArraySuffix) {
			return false
		}
	}
	return true
}
