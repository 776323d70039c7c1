// Package section defines the fixed binary structures found inside NITF
// image data.
//
// The only such structure is the mask table that starts the data of a
// masked image (IC of NM, M3, M8 and so on):
//
//	Bytes  | Field      | Type   | Description
//	-------|------------|--------|------------------------------------------
//	0-3    | IMDATOFF   | uint32 | offset from the image data to the first block
//	4-5    | BMRLNTH    | uint16 | block mask record length, 0 or 4
//	6-7    | TMRLNTH    | uint16 | pad pixel mask record length, 0 or 4
//	8-9    | TPXCDLNTH  | uint16 | pad pixel code length in bits
//	10-    | TPXCD      | bytes  | pad pixel code, (TPXCDLNTH+7)/8 bytes
//	       | BMR table  | uint32 | one offset per block, when BMRLNTH is 4
//	       | TMR table  | uint32 | one offset per block, when TMRLNTH is 4
//
// Every integer is big-endian. A table entry of NoOffset (0xFFFFFFFF)
// marks a block that is not stored (BMR) or has no pad pixels (TMR).
// For band sequential images each table has one entry per block per band.
package section
