package server

// Paddle 球拍（服务端权威状态）
type Paddle struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	VelocityY float64 `json:"velocityY"`
	// Stopped 置位后冻结垂直移动但不清零速度，再次收到 move 意图即按原速恢复
	Stopped bool `json:"stopPlayer"`
}

// Ball 球（服务端权威状态）。进球与开局时整体重建，不做就地复位
type Ball struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
}

// Score 双方得分。恰好两个槽位，用具名字段而非开放式映射
type Score struct {
	Player1 int `json:"1"`
	Player2 int `json:"2"`
}

// GameState 单个房间的全部模拟状态
type GameState struct {
	Player1 Paddle `json:"player1"`
	Player2 Paddle `json:"player2"`
	Ball    Ball   `json:"ball"`
	Score   Score  `json:"score"`
	// IsPlaying 为 false 时 Tick 不推进任何位置
	IsPlaying bool   `json:"isPlaying"`
	GameID    string `json:"gameId"`
}

// rect 返回球拍的几何矩形，供碰撞检测使用
func (p *Paddle) rect() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

func (b *Ball) rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// newPaddle 在距边墙固定偏移处创建垂直居中的球拍
func newPaddle(x float64) Paddle {
	return Paddle{
		X:      x,
		Y:      BoardHeight / 2,
		Width:  PaddleWidth,
		Height: PaddleHeight,
	}
}

// newBall 在场地中心创建新球；directionX 的符号决定发球方向
func newBall(directionX float64) Ball {
	return Ball{
		X:         BoardWidth / 2,
		Y:         BoardHeight / 2,
		Width:     BallSize,
		Height:    BallSize,
		VelocityX: directionX,
		VelocityY: InitialBallVelocityY,
	}
}

// NewGameState 创建初始模拟状态：双拍归位、球居中、比分清零、未开局
func NewGameState(gameID string) *GameState {
	return &GameState{
		GameID:  gameID,
		Player1: newPaddle(PaddleOffset),
		Player2: newPaddle(BoardWidth - PaddleWidth - PaddleOffset),
		Ball:    newBall(InitialBallVelocityX),
		Score:   Score{},
	}
}
