package i18n

var chineseTranslations = map[string]string{
	// Slide defaults
	"slide.title_format":        "幻灯片 %d",
	"slide.title_placeholder":   "单击此处添加标题",
	"slide.content_placeholder": "单击此处添加内容",
	"slide.copy_suffix":         " 副本",
	"slide.imported_title":      "导入的幻灯片",
	"slide.imported_content":    "从 PowerPoint 导入的内容",

	// Export
	"export.success":         "已导出 %s（%s）",
	"export.failed":          "导出失败：%s",
	"export.unknown_format":  "不支持的导出格式：%s",
	"export.diagnostics":     "%d 个元素无法精确导出：",
	"export.handout_title":   "演示文稿",
	"export.renderer_chrome": "使用 Chrome 渲染幻灯片：%s",

	// Import
	"import.success":          "成功导入 %d 张幻灯片！",
	"import.failed":           "导入失败：%s",
	"import.unsupported_file": "不支持的文件格式",
	"import.password_needed":  "该文件已加密，请提供密码",

	// Versions
	"version.saved":    "已保存 %s（%s）",
	"version.restored": "已恢复 %s",
	"version.none":     "暂无保存的版本",

	// Info
	"info.slides":   "%d 张幻灯片",
	"info.elements": "%d 个元素",
	"info.created":  "创建于 %s",
}
