package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Node is an entity kind in the ownership graph.
type Node string

const (
	NodeUser             Node = "user"
	NodeAnswers          Node = "answers"
	NodeSession          Node = "session"
	NodeLetter           Node = "letter"
	NodeStrengthAnalysis Node = "strength_analysis"
	NodeUnderstanding    Node = "understanding_session"
	NodeStrengthFinding  Node = "strength_finding_session"
	NodeWritingSession   Node = "writing_session"
	NodeCompletion       Node = "completion_history"
)

// Edge resolves what a parent owns. Children are cascaded recursively; keys
// are deleted as they are.
type Edge struct {
	Child   Node
	Resolve func(ctx context.Context, s Store, parentID string, doc map[string]interface{}) (children []string, keys []string, err error)
}

// ListEdge owns every id held in a parent-scoped index list, and the list.
func ListEdge(child Node, index func(string) string) Edge {
	return Edge{
		Child: child,
		Resolve: func(ctx context.Context, s Store, parentID string, _ map[string]interface{}) ([]string, []string, error) {
			key := index(parentID)
			ids, err := s.LRange(ctx, key, 0, -1)
			if err != nil {
				return nil, nil, err
			}
			return ids, []string{key}, nil
		},
	}
}

// PointerEdge owns the document a parent-scoped pointer key refers to, and
// the pointer.
func PointerEdge(child Node, pointer func(string) string) Edge {
	return Edge{
		Child: child,
		Resolve: func(ctx context.Context, s Store, parentID string, _ map[string]interface{}) ([]string, []string, error) {
			key := pointer(parentID)
			id, err := s.Get(ctx, key)
			if err != nil {
				return nil, nil, err
			}
			if id == "" {
				return nil, []string{key}, nil
			}
			return []string{id}, []string{key}, nil
		},
	}
}

// DocFieldEdge owns the child whose id is stored at path in the parent
// document.
func DocFieldEdge(child Node, path ...string) Edge {
	return Edge{
		Child: child,
		Resolve: func(_ context.Context, _ Store, _ string, doc map[string]interface{}) ([]string, []string, error) {
			if id := stringAt(doc, path...); id != "" {
				return []string{id}, nil, nil
			}
			return nil, nil, nil
		},
	}
}

// SameIDEdge treats the parent id as the id of a child of another kind, as
// with a LetterSession whose id keys its writing step documents.
func SameIDEdge(child Node) Edge {
	return Edge{
		Child: child,
		Resolve: func(_ context.Context, _ Store, parentID string, _ map[string]interface{}) ([]string, []string, error) {
			return []string{parentID}, nil, nil
		},
	}
}

// KeysEdge owns plain keys derived from the parent id.
func KeysEdge(keys func(string) []string) Edge {
	return Edge{
		Resolve: func(_ context.Context, _ Store, parentID string, _ map[string]interface{}) ([]string, []string, error) {
			return nil, keys(parentID), nil
		},
	}
}

// OwnedPointerEdge owns the key built from a document field, but only while
// that key still points back at the parent.
func OwnedPointerEdge(key func(string) string, path ...string) Edge {
	return Edge{
		Resolve: func(ctx context.Context, s Store, parentID string, doc map[string]interface{}) ([]string, []string, error) {
			value := stringAt(doc, path...)
			if value == "" {
				return nil, nil, nil
			}
			k := key(value)
			target, err := s.Get(ctx, k)
			if err != nil {
				return nil, nil, err
			}
			if target != parentID {
				return nil, nil, nil
			}
			return nil, []string{k}, nil
		},
	}
}

// Unindex names the parent index list a node's id must be removed from.
type Unindex func(id string, doc map[string]interface{}) string

type Graph struct {
	edges    map[Node][]Edge
	unindex  map[Node][]Unindex
	withDocs map[Node]bool
}

func NewGraph() *Graph {
	return &Graph{
		edges:    make(map[Node][]Edge),
		unindex:  make(map[Node][]Unindex),
		withDocs: make(map[Node]bool),
	}
}

// Declare registers a node. Nodes declared with a document must resolve to a
// stored document for a cascade rooted at them to succeed.
func (g *Graph) Declare(node Node, hasDocument bool, edges ...Edge) *Graph {
	g.withDocs[node] = hasDocument
	g.edges[node] = append(g.edges[node], edges...)
	return g
}

func (g *Graph) IndexedBy(node Node, indexes ...Unindex) *Graph {
	g.unindex[node] = append(g.unindex[node], indexes...)
	return g
}

type CascadeReport struct {
	Root        string         `json:"root"`
	DeletedKeys []string       `json:"deletedKeys"`
	Entities    map[Node]int   `json:"entities"`
	Unindexed   map[string]int `json:"unindexed,omitempty"`
}

type visit struct {
	node Node
	id   string
}

// CascadeDelete deletes id and everything it transitively owns. The root
// must exist when its node carries a document.
func (g *Graph) CascadeDelete(ctx context.Context, s Store, node Node, id string) (*CascadeReport, error) {
	if _, ok := g.withDocs[node]; !ok {
		return nil, fmt.Errorf("undeclared node %q", node)
	}
	if g.withDocs[node] {
		raw, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			return nil, ErrNotFound
		}
	}

	report := &CascadeReport{
		Root:      id,
		Entities:  make(map[Node]int),
		Unindexed: make(map[string]int),
	}
	keys := make(map[string]struct{})
	visited := make(map[visit]struct{})

	if err := g.walk(ctx, s, node, id, keys, visited, report); err != nil {
		return nil, err
	}

	for k := range keys {
		report.DeletedKeys = append(report.DeletedKeys, k)
	}
	if err := s.Delete(ctx, report.DeletedKeys...); err != nil {
		return nil, err
	}
	return report, nil
}

func (g *Graph) walk(ctx context.Context, s Store, node Node, id string, keys map[string]struct{}, visited map[visit]struct{}, report *CascadeReport) error {
	v := visit{node: node, id: id}
	if _, ok := visited[v]; ok || id == "" {
		return nil
	}
	visited[v] = struct{}{}

	var doc map[string]interface{}
	if g.withDocs[node] {
		raw, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if raw == "" {
			// Dangling reference, nothing left to own.
			return nil
		}
		if err := Decode(raw, &doc); err != nil {
			return fmt.Errorf("%s %s: %w", node, id, err)
		}
		keys[id] = struct{}{}
	}
	report.Entities[node]++

	for _, idx := range g.unindex[node] {
		indexKey := idx(id, doc)
		if indexKey == "" {
			continue
		}
		if err := s.LRem(ctx, indexKey, id); err != nil {
			return err
		}
		report.Unindexed[indexKey]++
	}

	for _, edge := range g.edges[node] {
		children, owned, err := edge.Resolve(ctx, s, id, doc)
		if err != nil {
			return err
		}
		for _, k := range owned {
			keys[k] = struct{}{}
		}
		if edge.Child == "" {
			continue
		}
		for _, child := range children {
			if err := g.walk(ctx, s, edge.Child, child, keys, visited, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func stringAt(doc map[string]interface{}, path ...string) string {
	var cur interface{} = doc
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur = m[p]
	}
	s, _ := cur.(string)
	return strings.TrimSpace(s)
}

func indexedByField(index func(string) string, field string) Unindex {
	return func(_ string, doc map[string]interface{}) string {
		if owner := stringAt(doc, field); owner != "" {
			return index(owner)
		}
		return ""
	}
}

func stepKeys(sessionID string) []string {
	keys := make([]string, 0, len(AllStepKinds))
	for _, kind := range AllStepKinds {
		keys = append(keys, StepKey(kind, sessionID))
	}
	return keys
}

// DefaultGraph declares who owns what in the store.
func DefaultGraph() *Graph {
	g := NewGraph()

	g.Declare(NodeUser, true,
		OwnedPointerEdge(NicknameKey, "nickname"),
		ListEdge(NodeAnswers, UserAnswersKey),
		ListEdge(NodeSession, UserSessionsKey),
		ListEdge(NodeLetter, UserLettersKey),
		ListEdge(NodeStrengthAnalysis, UserStrengthAnalysesKey),
	).IndexedBy(NodeUser, func(string, map[string]interface{}) string { return AllUsersKey })

	g.Declare(NodeAnswers, true,
		KeysEdge(func(id string) []string { return []string{AnswersLetterKey(id)} }),
	).IndexedBy(NodeAnswers, indexedByField(UserAnswersKey, "userId"))

	g.Declare(NodeSession, true,
		SameIDEdge(NodeWritingSession),
	).IndexedBy(NodeSession, indexedByField(UserSessionsKey, "userId"))

	g.Declare(NodeLetter, true,
		PointerEdge(NodeUnderstanding, UnderstandingByLetterKey),
		PointerEdge(NodeStrengthFinding, StrengthFindingByLetterKey),
		DocFieldEdge(NodeUnderstanding, "sessionIds", "understanding"),
		DocFieldEdge(NodeStrengthFinding, "sessionIds", "strengthFinding"),
		DocFieldEdge(NodeWritingSession, "sessionIds", "reflection"),
		DocFieldEdge(NodeWritingSession, "sessionIds", "solution"),
		OwnedPointerEdge(AnswersLetterKey, "questionAnswersId"),
		KeysEdge(func(id string) []string { return []string{ResponseLetterByLetterKey(id)} }),
	).IndexedBy(NodeLetter, indexedByField(UserLettersKey, "userId"))

	g.Declare(NodeStrengthAnalysis, true).
		IndexedBy(NodeStrengthAnalysis, indexedByField(UserStrengthAnalysesKey, "userId"))

	g.Declare(NodeUnderstanding, true)
	g.Declare(NodeStrengthFinding, true)

	g.Declare(NodeWritingSession, false,
		KeysEdge(stepKeys),
		ListEdge(NodeCompletion, ReflectionHistoryKey),
	)

	g.Declare(NodeCompletion, true)

	return g
}

// IsNotFound reports whether err means a document was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrReflectionItemNotFound)
}
