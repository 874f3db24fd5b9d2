package model

type Delivery struct {
	DeliveryID string `gorm:"column:delivery_id;primaryKey"`
	EventType  string `gorm:"column:event_type;type:text;not null"`
	ReceivedAt string `gorm:"column:received_at;type:text;not null"`
}

func (Delivery) TableName() string {
	return "deliveries"
}
