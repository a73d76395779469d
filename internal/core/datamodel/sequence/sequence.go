package sequence

type Sequence struct {
	Name         string `gorm:"primaryKey;column:name"`
	CurrentValue int64  `gorm:"column:current_value;not null;default:0"`
}
