package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	&SysPartner{},
	// Warehouse
	&WmsWarehouse{},
	&WmsProduct{},
	&WmsStockMovement{},
	// Documents
	&WmsReceipt{},
	&WmsReceiptItem{},
	&WmsDelivery{},
	&WmsDeliveryItem{},
	&WmsManufactureOrder{},
	&WmsManufactureComponent{},
}
