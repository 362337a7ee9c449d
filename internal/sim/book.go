package sim

// Position 表示持仓方向。
type Position int

const (
	Short Position = -1
	Flat  Position = 0
	Long  Position = 1
)

// String 返回持仓方向的可读名称。
func (p Position) String() string {
	switch p {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// Action 表示策略输出的离散动作。
type Action int

const (
	ActionHold  Action = 0
	ActionLong  Action = 1
	ActionShort Action = 2
	// ActionClose 不属于策略动作空间 {0,1,2}，仅在台账中标记
	// 平仓回现金的成交，使台账行自描述。
	ActionClose Action = 3
)

// String 返回动作的可读名称。
func (a Action) String() string {
	switch a {
	case ActionLong:
		return "LONG"
	case ActionShort:
		return "SHORT"
	case ActionClose:
		return "CLOSE"
	default:
		return "HOLD"
	}
}

// BookView 是仓位状态的只读快照，供观测构建等外部协作方使用。
type BookView struct {
	Position    Position
	EntryPrice  float64
	HoldingDays int
	Unrealized  float64
}

// Book 维护仓位状态机：当前方向、入场价、持有天数与浮动盈亏。
// 任一时刻只有一个方向生效；非平仓状态下未满足最短持有天数的
// 换仓请求会被静默压制为 HOLD。
type Book struct {
	minHoldingDays int

	position    Position
	entryPrice  float64
	holdingDays int
	unrealized  float64
}

// NewBook 创建仓位状态机。minHoldingDays 小于1时取1（等价于无约束）。
func NewBook(minHoldingDays int) *Book {
	if minHoldingDays < 1 {
		minHoldingDays = 1
	}
	return &Book{minHoldingDays: minHoldingDays}
}

// MinHoldingDays 返回最短持有天数约束。
func (b *Book) MinHoldingDays() int {
	return b.minHoldingDays
}

// Reset 清空仓位状态，供新一轮模拟使用。
func (b *Book) Reset() {
	b.position = Flat
	b.entryPrice = 0
	b.holdingDays = 0
	b.unrealized = 0
}

// Position 返回当前持仓方向。
func (b *Book) Position() Position {
	return b.position
}

// HoldingDays 返回当前持有天数。
func (b *Book) HoldingDays() int {
	return b.holdingDays
}

// EntryPrice 返回入场价，平仓状态下无意义。
func (b *Book) EntryPrice() float64 {
	return b.entryPrice
}

// Unrealized 返回浮动盈亏。
func (b *Book) Unrealized() float64 {
	return b.unrealized
}

// View 返回仓位状态快照。
func (b *Book) View() BookView {
	return BookView{
		Position:    b.position,
		EntryPrice:  b.entryPrice,
		HoldingDays: b.holdingDays,
		Unrealized:  b.unrealized,
	}
}

// CanFlip 判断当前是否允许换仓。
func (b *Book) CanFlip() bool {
	return b.position == Flat || b.holdingDays >= b.minHoldingDays
}

// Apply 在给定价格下执行动作，返回是否实际发生换仓成交。
// 未满足最短持有天数的换仓请求被压制为 HOLD；
// 请求已持有方向的动作不构成成交。
func (b *Book) Apply(action Action, price float64) (bool, error) {
	if price <= 0 {
		return false, &InvalidPriceError{Price: price}
	}

	if !b.CanFlip() {
		action = ActionHold
	}

	switch action {
	case ActionLong:
		if b.position == Flat || b.position == Short {
			b.open(Long, price)
			return true, nil
		}
	case ActionShort:
		if b.position == Flat || b.position == Long {
			b.open(Short, price)
			return true, nil
		}
	}

	return false, nil
}

// Close 无条件平仓，返回是否原先持有仓位。入场价与持有天数被清零。
func (b *Book) Close() bool {
	if b.position == Flat {
		return false
	}
	b.Reset()
	return true
}

// Advance 根据下一根Bar的价格刷新浮动盈亏与持有天数。
func (b *Book) Advance(nextPrice float64) error {
	if nextPrice <= 0 {
		return &InvalidPriceError{Price: nextPrice}
	}

	switch b.position {
	case Long:
		b.unrealized = nextPrice - b.entryPrice
	case Short:
		b.unrealized = b.entryPrice - nextPrice
	default:
		b.unrealized = 0
	}

	if b.position != Flat {
		b.holdingDays++
	} else {
		b.holdingDays = 0
	}

	return nil
}

func (b *Book) open(direction Position, price float64) {
	b.position = direction
	b.entryPrice = price
	b.holdingDays = 0
	b.unrealized = 0
}
