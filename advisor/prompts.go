package advisor

// SystemInstruction is the fixed dermatologist-assistant persona shared by
// every advisory request. It is consultative only: it must never override
// the classification backend's result.
const SystemInstruction = `
Bạn là một trợ lý bác sĩ da liễu chuyên nghiệp, tận tâm và thông minh.
Nhiệm vụ của bạn là hỗ trợ tư vấn và đưa ra lời khuyên dựa trên kết quả chẩn đoán đã có.
Bạn KHÔNG được phép thay đổi kết quả chẩn đoán của hệ thống.
Ngôn ngữ sử dụng: Tiếng Việt.
`

// FallbackQuestions replaces the generated questionnaire when the service
// call fails or its response cannot be parsed.
var FallbackQuestions = []string{
	"Bạn có cảm thấy ngứa ở vùng da này không?",
	"Vết thương này đã xuất hiện lâu chưa (trên 2 tuần)?",
	"Bạn có bị sốt nhẹ không?",
}

// Fixed substitute strings for empty responses
const (
	adviceApology   = "Xin lỗi, tôi không thể đưa ra lời khuyên lúc này."
	chatFallback    = "Tôi không nghe rõ, bạn nói lại được không?"
	clinicsFallback = "Không tìm thấy phòng khám nào gần đây."

	// acknowledgment is the canned model turn that closes the chat
	// grounding preamble.
	acknowledgment = "Tôi đã hiểu. Bạn cần tư vấn thêm gì về bệnh này?"

	clinicsPrompt = "Hãy tìm 3 phòng khám da liễu hoặc bệnh viện có chuyên khoa da liễu uy tín gần vị trí này nhất. Hiển thị dưới dạng danh sách markdown kèm địa chỉ."
)

// Prompt templates, registered on the engine at construction
var promptTemplates = map[string]string{
	"questions": `
Tôi có một bệnh nhân.
Hệ thống chẩn đoán hình ảnh đã xác định bệnh nhân mắc: "{{.Prediction}}".

Hãy đóng vai bác sĩ, dựa trên bệnh lý này và quan sát thêm hình ảnh.
Hãy đưa ra 3 đến 4 câu hỏi quan trọng dạng Yes/No (Có/Không) để khai thác thêm triệu chứng lâm sàng (như cảm giác ngứa, đau, thời gian mắc bệnh...).
Mục đích là để có thêm thông tin nhằm đưa ra lời khuyên chăm sóc chính xác nhất ở bước sau.

Chỉ trả về danh sách câu hỏi.
`,

	"advice": `
Thông tin ca bệnh:
1. Kết quả chẩn đoán xác định từ hệ thống: "{{.Prediction}}".
2. Triệu chứng bệnh nhân cung cấp thêm:
{{- range .QA}}
- Hỏi: {{.Question}}
  - Trả lời: {{if .Yes}}Có{{else}}Không{{end}}
{{- end}}

Nhiệm vụ:
Dựa trên bệnh "{{.Prediction}}" và các triệu chứng trên, hãy đưa ra lời khuyên tư vấn chi tiết.

Cấu trúc câu trả lời:
- **Nhận định tình trạng**: Tóm tắt ngắn gọn tình trạng dựa trên câu trả lời (ví dụ: mức độ nghiêm trọng dựa trên triệu chứng).
- **Lời khuyên điều trị & Chăm sóc**: Các phương pháp hỗ trợ điều trị, vệ sinh, chế độ ăn uống phù hợp với bệnh {{.Prediction}}.
- **Cảnh báo**: Những dấu hiệu nào cho thấy bệnh đang trở nặng cần đi viện ngay lập tức.

Lưu ý: Không chẩn đoán lại tên bệnh. Hãy tập trung vào tư vấn giải pháp.
Định dạng Markdown.
`,

	"chat_context": `
Bối cảnh: Bệnh nhân đã có kết quả chẩn đoán là: {{.Prediction}}.
Bây giờ họ đang hỏi thêm. Hãy trả lời ngắn gọn, súc tích xoay quanh bệnh này.
`,
}
