package tiles

// The built-in fallback set: polyomino shapes of two to five island cells,
// used whenever no catalog can be loaded.
var builtinShapes = []struct {
	name string
	rows []string
}{
	{"Domino", []string{
		"11",
		"00"}},
	{"Corner", []string{
		"10",
		"11"}},
	{"Reed", []string{
		"111",
		"000",
		"000"}},
	{"Square", []string{
		"11",
		"11"}},
	{"Tee", []string{
		"111",
		"010",
		"000"}},
	{"Snake", []string{
		"110",
		"011",
		"000"}},
	{"Hook", []string{
		"100",
		"100",
		"110"}},
	{"Cross", []string{
		"010",
		"111",
		"010"}},
}

// BuiltinSet returns a fresh copy of the built-in tile set, ids assigned in
// listing order.
func BuiltinSet() []*Tile {
	catalog := make([]*Tile, 0, len(builtinShapes))
	for i, bs := range builtinShapes {
		shape, err := parseShape(bs.rows)
		if err != nil {
			panic("tiles: bad built-in shape " + bs.name + ": " + err.Error())
		}
		catalog = append(catalog, NewTile(i, bs.name, shape))
	}
	return catalog
}
