package mappers

// All holds the supported mappers, indexed by iNES mapper number.
var All = map[uint16]Desc{
	0: NROM,
}
