package server

// Rect 轴对齐矩形，球与球拍共用的几何形状
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Overlaps 标准 AABB 相交测试：两矩形在 X、Y 轴上的投影均严格重叠才算碰撞。
// 纯函数，边缘恰好相贴不算相交。
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.Width &&
		a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height &&
		a.Y+a.Height > b.Y
}

// OutOfVerticalBounds 判断纵坐标为 y、高为 height 的物体是否越出场地上下边界。
// 用于移动前检查：越界则该 Tick 不移动，而不是移动后贴边修正。
func OutOfVerticalBounds(y, height, boardHeight float64) bool {
	return y < 0 || y+height > boardHeight
}
