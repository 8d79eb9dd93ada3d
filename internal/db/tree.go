package db

// Node is a todo with its children resolved, as consumed by the index
// template.
type Node struct {
	Todo
	Children []*Node `json:"children"`
}

// BuildForest groups a flat id-ordered todo list into trees: top-level todos
// become roots, everything else hangs under its parent in id order. Each row
// is placed exactly once, so a todo never renders before its own parent. A
// row pointing at itself or at a parent missing from the list surfaces as a
// root instead of disappearing.
func BuildForest(todos []Todo) []*Node {
	byID := make(map[int64]*Node, len(todos))
	for i := range todos {
		byID[todos[i].ID] = &Node{Todo: todos[i]}
	}

	var roots []*Node
	for _, t := range todos {
		n := byID[t.ID]
		if t.ParentID != nil {
			if parent, ok := byID[*t.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
