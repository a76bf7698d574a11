package server

// Tick 将模拟状态推进一帧，返回本帧进球方与胜者（0 表示无）。
// 纯状态变换，无任何 I/O；顺序固定：球拍 → 球 → 反弹 → 拍碰撞 → 得分 → 胜负。
func Tick(state *GameState) (goal, winner int) {
	if !state.IsPlaying {
		return 0, 0
	}

	movePaddle(&state.Player1)
	movePaddle(&state.Player2)

	ball := &state.Ball
	ball.X += ball.VelocityX
	ball.Y += ball.VelocityY

	// 上下墙反弹：只翻转速度符号，不修正位置（允许单帧轻微穿墙）
	if ball.Y <= 0 || ball.Y+ball.Height >= BoardHeight {
		ball.VelocityY *= -1
	}

	// 拍碰撞互斥：命中 1 号拍的帧不再检查 2 号拍
	if Overlaps(ball.rect(), state.Player1.rect()) {
		if ball.X <= state.Player1.X+state.Player1.Width {
			ball.VelocityX *= -1
		}
	} else if Overlaps(ball.rect(), state.Player2.rect()) {
		if ball.X+ball.Width >= state.Player2.X {
			ball.VelocityX *= -1
		}
	}

	// 得分判定：整球越过边线；换发方向偏向失分方
	if ball.X < 0 {
		state.Score.Player2++
		goal = 2
		state.Ball = newBall(-InitialBallVelocityX)
	} else if ball.X+ball.Width > BoardWidth {
		state.Score.Player1++
		goal = 1
		state.Ball = newBall(InitialBallVelocityX)
	}

	// 胜负只在得分帧判定，达到目标分即停止对局
	if goal != 0 {
		if state.Score.Player1 >= WinningScore {
			state.IsPlaying = false
			winner = 1
		} else if state.Score.Player2 >= WinningScore {
			state.IsPlaying = false
			winner = 2
		}
	}

	return goal, winner
}

// movePaddle 应用一帧垂直移动：越界则整帧不动，Stopped 置位时冻结但保留速度
func movePaddle(p *Paddle) {
	if OutOfVerticalBounds(p.Y+p.VelocityY, p.Height, BoardHeight) {
		return
	}
	if !p.Stopped {
		p.Y += p.VelocityY
	}
}
