package layoutfb

// Optional fields are omitted from the buffer rather than written empty;
// these report whether they were written.

func (rcv *Branch) HasCompressedbytes() bool {
	return rcv._tab.Offset(10) != 0
}

func (rcv *Branch) HasBasketDataBorders() bool {
	return rcv._tab.Offset(16) != 0
}

func (rcv *Branch) HasBasketKeylens() bool {
	return rcv._tab.Offset(18) != 0
}

func (rcv *Column) HasTitle() bool {
	return rcv._tab.Offset(6) != 0
}

func (rcv *Dataset) HasLocationPrefix() bool {
	return rcv._tab.Offset(16) != 0
}
