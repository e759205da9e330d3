// Package pyzantine provides methods for generating photomosaics given a
// library (= set) of square tile images. It takes a target image, divides it
// into square cells and replaces each cell by the tile whose average color is
// closest to the average color of the cell.
//
// The average colors of the tiles are precomputed once and stored in an index
// file, see IndexFile and BuildIndexFile. A mosaic is then created by loading
// the index and calling BuildMosaic (or a configured Builder).
//
// It ships with an executable program (cmd/pyzantine) to prepare tile
// libraries, build index files and generate mosaic images.
package pyzantine
