package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   string
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CommissionListFilter 查询佣金记录列表的过滤条件
type CommissionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderID     uint
	OrderNo     string
	Status      string
	Level       int
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PartnerListFilter 查询合作诊所列表的过滤条件
type PartnerListFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// BookingListFilter 查询预约列表的过滤条件
type BookingListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	PartnerID     uint
	Status        string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}
