package layout

// Page is one independently compressed chunk of a basket. FileSeek points
// at the payload, after any chunk header.
type Page struct {
	FileSeek          uint64
	CompressedBytes   uint32
	UncompressedBytes uint32
}

// NewPage creates a page
func NewPage(fileSeek uint64, compressedBytes, uncompressedBytes uint32) Page {
	return Page{FileSeek: fileSeek, CompressedBytes: compressedBytes, UncompressedBytes: uncompressedBytes}
}

// IsCompressed reports whether the page is stored compressed
func (p Page) IsCompressed() bool {
	return p.CompressedBytes != p.UncompressedBytes
}

// Basket is a derived view of one basket of a branch
type Basket struct {
	Index             int
	EntryStart        uint64
	EntryStop         uint64
	PageStart         int
	PageStop          int
	DataBorder        uint32
	Keylen            uint32
	CompressedBytes   uint64
	UncompressedBytes uint64
}

// NumEntries returns the number of entries in the basket
func (b Basket) NumEntries() uint64 {
	return b.EntryStop - b.EntryStart
}

// NumPages returns the number of pages in the basket
func (b Basket) NumPages() int {
	return b.PageStop - b.PageStart
}

// HasOffsetTable reports whether the basket ends with an entry offset table
func (b Basket) HasOffsetTable() bool {
	return b.DataBorder != 0
}

// DataBytes returns the number of payload bytes before any offset table
func (b Basket) DataBytes() uint64 {
	if b.DataBorder != 0 {
		return uint64(b.DataBorder)
	}
	return b.UncompressedBytes
}
