package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// 面板标题
	"panel.chat":    "对话",
	"panel.rollout": "推进",
	"panel.diag":    "诊断",

	// 状态栏
	"status.ready": "就绪",
	"status.busy":  "等待应答...",

	// 聊天终端
	"input.placeholder": "向推进助手提问...",
	"chat.empty_reply":  "（空应答）",
	"chat.status_line":  "%d 毫秒内应答，来自 %s",
	"chat.failed_line":  "请求失败：%s",
	"chat.tokens":       "%d 个 token",

	// 诊断面板
	"diag.actions_hint": "h 健康检查 · p 连通性 · d 数据库",
	"diag.render_fault": "诊断面板渲染失败，请重启恢复。",
	"diag.no_calls":     "暂无调用记录",

	// 推进饼图
	"rollout.play_hint": "空格键重放",
}
