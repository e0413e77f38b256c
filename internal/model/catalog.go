package model

import "sort"

// Catalog is an in-memory arena of catalog entities addressed by ID.
// Entities reference each other only through IDs.
type Catalog struct {
	Materials map[string]Material `json:"materials"`
	Colors    map[string]Color    `json:"colors"`
	Molds     map[string]Mold     `json:"molds"`
	Pieces    map[string]Piece    `json:"pieces"`
	Products  map[string]Product  `json:"products"`
}

func NewCatalog() *Catalog {
	return &Catalog{
		Materials: make(map[string]Material),
		Colors:    make(map[string]Color),
		Molds:     make(map[string]Mold),
		Pieces:    make(map[string]Piece),
		Products:  make(map[string]Product),
	}
}

func (c *Catalog) AddMaterial(m Material) { c.Materials[m.ID] = m }
func (c *Catalog) AddColor(col Color)     { c.Colors[col.ID] = col }
func (c *Catalog) AddMold(m Mold)         { c.Molds[m.ID] = m }
func (c *Catalog) AddProduct(p Product)   { c.Products[p.ID] = p }

// ReplacePieces drops every piece of the mold and stores the given set.
func (c *Catalog) ReplacePieces(moldID string, pieces []Piece) {
	for id, p := range c.Pieces {
		if p.MoldID == moldID {
			delete(c.Pieces, id)
		}
	}
	for _, p := range pieces {
		p.MoldID = moldID
		c.Pieces[p.ID] = p
	}
}

func (c *Catalog) Material(id string) (Material, bool) {
	m, ok := c.Materials[id]
	return m, ok
}

func (c *Catalog) Color(id string) (Color, bool) {
	col, ok := c.Colors[id]
	return col, ok
}

func (c *Catalog) Piece(id string) (Piece, bool) {
	p, ok := c.Pieces[id]
	return p, ok
}

func (c *Catalog) Product(id string) (Product, bool) {
	p, ok := c.Products[id]
	return p, ok
}

// MoldPieces returns the pieces of a mold ordered by name.
func (c *Catalog) MoldPieces(moldID string) []Piece {
	var out []Piece
	for _, p := range c.Pieces {
		if p.MoldID == moldID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindMaterialByName returns the first material with the given name.
func (c *Catalog) FindMaterialByName(name string) (Material, bool) {
	for _, m := range c.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return Material{}, false
}
