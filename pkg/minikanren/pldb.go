package minikanren

import "fmt"

// pldb is an in-memory relational database for logic programming: named
// relations over ground facts, queried as ordinary goals. The database is
// a persistent data structure: AddFact returns a new database sharing all
// unmodified relations with its parent, so a snapshot taken before a
// speculative update costs nothing.
//
// Example:
//
//	parent, _ := DbRel("parent", 2, 0)
//	db := NewDatabase()
//	db, _ = db.AddFact(parent, NewAtom("alice"), NewAtom("bob"))
//	db, _ = db.AddFact(parent, NewAtom("bob"), NewAtom("carol"))
//
//	child := Fresh("child")
//	goal := db.Query(parent, NewAtom("alice"), child)

// Relation is a named relation with fixed arity and optional indexed
// columns. Relations are immutable after creation.
type Relation struct {
	name    string
	arity   int
	indexes map[int]bool
}

// DbRel creates a relation with the given name, arity and indexed columns
// (0-based). Indexing a column turns queries with a ground term in that
// position into a hash lookup instead of a scan. Returns an error on a
// non-positive arity, an empty name or an out-of-range index.
func DbRel(name string, arity int, indexedCols ...int) (*Relation, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("pldb: relation arity must be positive, got %d", arity)
	}
	if name == "" {
		return nil, fmt.Errorf("pldb: relation name cannot be empty")
	}
	indexes := make(map[int]bool, len(indexedCols))
	for _, col := range indexedCols {
		if col < 0 || col >= arity {
			return nil, fmt.Errorf("pldb: index column %d out of range for arity %d", col, arity)
		}
		indexes[col] = true
	}
	return &Relation{name: name, arity: arity, indexes: indexes}, nil
}

// Name returns the relation's name.
func (r *Relation) Name() string { return r.name }

// Arity returns the relation's number of columns.
func (r *Relation) Arity() int { return r.arity }

// IsIndexed reports whether the given column is indexed.
func (r *Relation) IsIndexed(col int) bool { return r.indexes[col] }

// fact is one stored row. Facts are ground and immutable.
type fact struct {
	terms []Term
	hash  uint64
}

func newFact(terms []Term) (*fact, error) {
	h := uint64(14695981039346656037)
	for i, t := range terms {
		if hasUnboundVar(t) {
			return nil, fmt.Errorf("pldb: fact term at position %d is not ground: %s", i, t.String())
		}
		h = h*1099511628211 ^ HashTerm(t)
	}
	return &fact{terms: terms, hash: h}, nil
}

// relationData is the stored content of one relation: its facts in
// insertion order, a dedup set, and one hash index per indexed column.
type relationData struct {
	rel   *Relation
	facts []*fact
	seen  map[uint64]bool
	index map[int]map[uint64][]*fact
}

func (rd *relationData) clone() *relationData {
	facts := make([]*fact, len(rd.facts))
	copy(facts, rd.facts)
	seen := make(map[uint64]bool, len(rd.seen))
	for k := range rd.seen {
		seen[k] = true
	}
	index := make(map[int]map[uint64][]*fact, len(rd.index))
	for col, buckets := range rd.index {
		fresh := make(map[uint64][]*fact, len(buckets))
		for k, v := range buckets {
			// Full slice expression: an append in one derived database must
			// reallocate instead of writing into a sibling's bucket.
			fresh[k] = v[:len(v):len(v)]
		}
		index[col] = fresh
	}
	return &relationData{rel: rd.rel, facts: facts, seen: seen, index: index}
}

// Database maps relations to their facts. The zero-cost way to obtain one
// is NewDatabase; updates go through AddFact and RemoveFact, which return
// derived databases.
type Database struct {
	relations map[string]*relationData
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{relations: make(map[string]*relationData)}
}

func (db *Database) derive(name string, rd *relationData) *Database {
	relations := make(map[string]*relationData, len(db.relations)+1)
	for k, v := range db.relations {
		relations[k] = v
	}
	relations[name] = rd
	return &Database{relations: relations}
}

// AddFact returns a database extended with one ground fact. Duplicate
// facts are ignored. Returns an error on an arity mismatch or a non-ground
// term.
func (db *Database) AddFact(rel *Relation, terms ...Term) (*Database, error) {
	if len(terms) != rel.arity {
		return nil, fmt.Errorf("pldb: %s expects %d terms, got %d", rel.name, rel.arity, len(terms))
	}
	f, err := newFact(terms)
	if err != nil {
		return nil, err
	}

	rd, ok := db.relations[rel.name]
	if !ok {
		rd = &relationData{
			rel:   rel,
			seen:  make(map[uint64]bool),
			index: make(map[int]map[uint64][]*fact),
		}
		for col := range rel.indexes {
			rd.index[col] = make(map[uint64][]*fact)
		}
	} else {
		if rd.seen[f.hash] {
			return db, nil
		}
		rd = rd.clone()
	}

	rd.facts = append(rd.facts, f)
	rd.seen[f.hash] = true
	for col := range rel.indexes {
		key := HashTerm(terms[col])
		rd.index[col][key] = append(rd.index[col][key], f)
	}
	return db.derive(rel.name, rd), nil
}

// RemoveFact returns a database without the given fact. Removing an absent
// fact is a no-op.
func (db *Database) RemoveFact(rel *Relation, terms ...Term) (*Database, error) {
	if len(terms) != rel.arity {
		return nil, fmt.Errorf("pldb: %s expects %d terms, got %d", rel.name, rel.arity, len(terms))
	}
	f, err := newFact(terms)
	if err != nil {
		return nil, err
	}
	rd, ok := db.relations[rel.name]
	if !ok || !rd.seen[f.hash] {
		return db, nil
	}

	rd = rd.clone()
	kept := rd.facts[:0]
	for _, g := range rd.facts {
		if g.hash != f.hash {
			kept = append(kept, g)
		}
	}
	rd.facts = kept
	delete(rd.seen, f.hash)
	for col, buckets := range rd.index {
		key := HashTerm(terms[col])
		var remaining []*fact
		for _, g := range buckets[key] {
			if g.hash != f.hash {
				remaining = append(remaining, g)
			}
		}
		if remaining == nil {
			delete(buckets, key)
		} else {
			buckets[key] = remaining
		}
	}
	return db.derive(rel.name, rd), nil
}

// FactCount returns the number of stored facts for a relation.
func (db *Database) FactCount(rel *Relation) int {
	if rd, ok := db.relations[rel.name]; ok {
		return len(rd.facts)
	}
	return 0
}

// Query creates a goal that succeeds once per stored fact unifying with
// the given terms. When an indexed column holds a ground term at
// application time, only that column's hash bucket is scanned. Panics on
// an arity mismatch: that is a programming error in the query, not a
// failing goal.
func (db *Database) Query(rel *Relation, terms ...Term) Goal {
	if len(terms) != rel.arity {
		panic(fmt.Sprintf("pldb: %s expects %d terms, got %d", rel.name, rel.arity, len(terms)))
	}
	return func(st *State) *Stream {
		rd, ok := db.relations[rel.name]
		if !ok {
			return emptyStream()
		}
		candidates := rd.facts
		for col := range rel.indexes {
			walked := st.WalkStar(terms[col])
			if hasUnboundVar(walked) {
				continue
			}
			candidates = rd.index[col][HashTerm(walked)]
			break
		}
		goals := make([]Goal, 0, len(candidates))
		for _, f := range candidates {
			row := make([]Goal, rel.arity)
			for i, t := range f.terms {
				row[i] = Eq(terms[i], t)
			}
			goals = append(goals, Conj(row...))
		}
		return Conde(goals...)(st)
	}
}
