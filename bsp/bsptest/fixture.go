// SPDX-License-Identifier: GPL-2.0-or-later

package bsptest

// SimpleMap returns a map of the cube [-256,256]^3 cut into four leafs:
//
//	x >= 0, y >= 0: leaf 1, cluster 0, faces 0 1
//	x >= 0, y <  0: leaf 2, cluster 1, face 2
//	x <  0, z >= 0: leaf 3, cluster 2, faces 3 4
//	x <  0, z <  0: leaf 0, solid, no cluster, face 9
//
// Cluster 0 sees 0 and 1, cluster 1 sees all, cluster 2 sees 1 and 2.
func SimpleMap() *Map {
	return &Map{
		Planes: []Plane{
			{Normal: [3]float32{1, 0, 0}, Type: 0},
			{Normal: [3]float32{0, 1, 0}, Type: 1},
			{Normal: [3]float32{0, 0, 1}, Type: 2},
		},
		Nodes: []Node{
			{Plane: 0, Front: 1, Back: 2, Mins: [3]int16{-256, -256, -256}, Maxs: [3]int16{256, 256, 256}},
			{Plane: 1, Front: LeafRef(1), Back: LeafRef(2), Mins: [3]int16{0, -256, -256}, Maxs: [3]int16{256, 256, 256}},
			{Plane: 2, Front: LeafRef(3), Back: LeafRef(0), Mins: [3]int16{-256, -256, -256}, Maxs: [3]int16{0, 256, 256}},
		},
		Leafs: []Leaf{
			{Contents: 1, Cluster: -1, Mins: [3]int16{-256, -256, -256}, Maxs: [3]int16{0, 256, 0}, FirstFace: 0, FaceCount: 1},
			{Cluster: 0, Mins: [3]int16{0, 0, -256}, Maxs: [3]int16{256, 256, 256}, FirstFace: 1, FaceCount: 2},
			{Cluster: 1, Mins: [3]int16{0, -256, -256}, Maxs: [3]int16{256, 0, 256}, FirstFace: 3, FaceCount: 1},
			{Cluster: 2, Mins: [3]int16{-256, -256, 0}, Maxs: [3]int16{0, 256, 256}, FirstFace: 4, FaceCount: 2},
		},
		LeafFaces: []uint16{9, 0, 1, 2, 3, 4},
		PVS: [][]bool{
			{true, true, false},
			{true, true, true},
			{false, true, true},
		},
		Entities: `{
"classname" "worldspawn"
"sky" "unit1_"
"message" "Simple Map"
}
{
"classname" "info_player_start"
"origin" "64 64 32"
"angle" "90"
}
{
"classname" "light"
"origin" "10 10 10"
"light" "200"
}
{
"classname" "light"
"origin" "-100 0 50"
"_color" "1 0.5 0.5"
}
{
"classname" "monster_soldier"
"origin" "128 -64 24"
}
`,
	}
}
