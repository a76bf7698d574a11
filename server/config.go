package server

import "time"

// 游戏规则常量：服务端与客户端预测必须使用同一组数值，否则会出现位置漂移。
// 所有数值编译期固定，不支持运行时修改（/admin/config 仅提供只读导出）。
const (
	// BoardWidth/BoardHeight 球场逻辑尺寸
	BoardWidth  = 800.0
	BoardHeight = 600.0

	// PaddleWidth/PaddleHeight 球拍尺寸
	PaddleWidth  = 10.0
	PaddleHeight = 100.0
	// PaddleOffset 球拍距离本方边墙的水平偏移
	PaddleOffset = 20.0
	// PaddleSpeed 每 Tick 球拍垂直移动步长
	PaddleSpeed = 6.0

	// BallSize 球的边长（正方形）
	BallSize = 10.0
	// InitialBallVelocityX/Y 发球初速度；X 的符号决定发球方向
	InitialBallVelocityX = 5.0
	InitialBallVelocityY = 5.0

	// WinningScore 先达到该分数者获胜
	WinningScore = 5

	// TicksPerSecond 世界推进频率（60 TPS，与原始客户端渲染帧率对齐）
	TicksPerSecond = 60
)

// TickInterval 由 TicksPerSecond 换算的 Tick 周期
var TickInterval = time.Second / TicksPerSecond
