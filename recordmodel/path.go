package recordmodel

import "context"

type direction int

const (
	directionParent direction = iota
	directionChild
)

type pathStep struct {
	dir          direction
	dataTypeName string
}

// Path describes a typed walk through the record hierarchy, one
// parent-of/child-of hop per step.
type Path struct {
	steps []pathStep
}

func NewPath() *Path {
	return &Path{}
}

// Parent appends a hop to parents of the given data type.
func (p *Path) Parent(dataTypeName string) *Path {
	p.steps = append(p.steps, pathStep{dir: directionParent, dataTypeName: dataTypeName})
	return p
}

// Child appends a hop to children of the given data type.
func (p *Path) Child(dataTypeName string) *Path {
	p.steps = append(p.steps, pathStep{dir: directionChild, dataTypeName: dataTypeName})
	return p
}

// LoadPath fetches and attaches every relationship along the path, starting
// from the given records. After it returns, ParentsOfType/ChildrenOfType
// resolve locally for every hop of the path.
func (m *Manager) LoadPath(ctx context.Context, records []*Record, path *Path) error {
	frontier := records

	for _, step := range path.steps {
		if len(frontier) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(frontier))
		seen := make(map[int64]bool, len(frontier))
		for _, r := range frontier {
			if !seen[r.id] {
				seen[r.id] = true
				ids = append(ids, r.id)
			}
		}

		related, err := m.loadRelated(ctx, ids, step.dataTypeName, step.dir)
		if err != nil {
			return err
		}

		next := make([]*Record, 0)
		nextSeen := make(map[int64]bool)
		for _, r := range frontier {
			for _, rel := range related[r.id] {
				if step.dir == directionParent {
					r.attachParent(rel)
					rel.attachChild(r)
				} else {
					r.attachChild(rel)
					rel.attachParent(r)
				}

				if !nextSeen[rel.id] {
					nextSeen[rel.id] = true
					next = append(next, rel)
				}
			}
		}

		frontier = next
	}

	return nil
}

func (m *Manager) loadRelated(ctx context.Context, ids []int64, dataTypeName string, dir direction) (map[int64][]*Record, error) {
	fetch := m.client.GetChildren
	if dir == directionParent {
		fetch = m.client.GetParents
	}

	recs, err := fetch(ctx, ids, dataTypeName)
	if err != nil {
		return nil, err
	}

	wrapped := make(map[int64][]*Record, len(recs))
	for id, list := range recs {
		wrapped[id] = m.AddExistingRecords(list)
	}

	return wrapped, nil
}
