package locales

import "github.com/iota-uz/go-i18n/v2/i18n"

// label pairs are [ko, en].
var labels = map[string][2]string{
	// navigation
	"Nav.Cost":      {"원가 탐색기", "Cost Explorer"},
	"Nav.Browse":    {"원가 폴더 보기", "Cost Browser"},
	"Nav.Materials": {"재료 물성치", "Material Properties"},
	"Nav.Prices":    {"재료 가격", "Material Prices"},
	"Nav.Machines":  {"설비", "Machines"},
	"Nav.Plants":    {"공장 / 지역", "Plants / Regions"},
	"Nav.Users":     {"사용자 관리", "Users"},
	"Nav.Config":    {"설정 관리", "Configuration"},
	"Nav.Language":  {"English", "한국어"},

	// common
	"Common.Search":           {"검색", "Search"},
	"Common.SearchHint":       {"키 또는 이름으로 검색", "Search by key or name"},
	"Common.IncludeReference": {"참조 데이터 포함", "Include reference data"},
	"Common.Export":           {"엑셀 다운로드", "Export Excel"},
	"Common.ExportPDF":        {"PDF 다운로드", "Export PDF"},
	"Common.Refresh":          {"새로고침", "Refresh"},
	"Common.Save":             {"저장", "Save"},
	"Common.Cancel":           {"취소", "Cancel"},
	"Common.Edit":             {"수정", "Edit"},
	"Common.Delete":           {"삭제", "Delete"},
	"Common.Create":           {"추가", "Add"},
	"Common.NoData":           {"데이터가 없습니다.", "No data."},
	"Common.Prev":             {"이전", "Previous"},
	"Common.Next":             {"다음", "Next"},
	"Common.Page":             {"페이지", "Page"},
	"Common.Go":               {"이동", "Go"},
	"Common.Total":            {"전체 {{.Count}}건", "{{.Count}} total"},
	"Common.Showing":          {"{{.First}}-{{.Last}} / {{.Total}}", "{{.First}}-{{.Last}} of {{.Total}}"},
	"Common.All":              {"전체", "All"},
	"Common.Up":               {"상위로", "Up"},
	"Common.Home":             {"처음", "Home"},
	"Common.Filter":           {"이름 필터", "Filter by name"},

	// columns
	"Col.No":            {"No", "No"},
	"Col.Key":           {"키", "Key"},
	"Col.Name":          {"이름", "Name"},
	"Col.NameKo":        {"국문명", "Name (KR)"},
	"Col.NameEn":        {"영문명", "Name (EN)"},
	"Col.Region":        {"지역", "Region"},
	"Col.Plant":         {"공장", "Plant"},
	"Col.Density":       {"비중", "Density"},
	"Col.StandardName":  {"규격명", "Standard Name"},
	"Col.StandardType":  {"규격 유형", "Standard Type"},
	"Col.Invest":        {"투자비", "Invest"},
	"Col.Currency":      {"통화", "Currency"},
	"Col.Depreciation":  {"상각 연수 (Y)", "Depreciation (Y)"},
	"Col.PowerOnRate":   {"가동률 (%)", "Power On Rate (%)"},
	"Col.SpaceNet":      {"소요 면적", "Space Net"},
	"Col.ValidFrom":     {"Valid From", "Valid From"},
	"Col.Revision":      {"리비전", "Revision"},
	"Col.Price":         {"가격", "Price"},
	"Col.ScrapPrice":    {"스크랩 비용", "Scrap Price"},
	"Col.Unit":          {"단위", "Unit"},
	"Col.Class":         {"분류", "Class"},
	"Col.GUID":          {"GUID", "GUID"},
	"Col.UserID":        {"아이디", "User ID"},
	"Col.UserName":      {"이름", "Name"},
	"Col.Department":    {"부서", "Department"},
	"Col.Role":          {"권한", "Role"},
	"Col.Active":        {"사용", "Active"},
	"Col.AccessDate":    {"접속 일시", "Access Date"},
	"Col.AccessIP":      {"접속 IP", "Access IP"},
	"Col.AccessType":    {"구분", "Type"},
	"Col.Result":        {"결과", "Result"},
	"Col.ValidRegion":   {"지역 코드 확인", "Region Check"},
	"Col.MaterialClass": {"재료 분류", "Material Class"},
	"Col.MachineGroup":  {"설비 그룹", "Machine Group"},

	// screens
	"Cost.Title":        {"원가 탐색기", "Cost Explorer"},
	"Cost.Loading":      {"불러오는 중...", "Loading..."},
	"Cost.Empty":        {"하위 항목이 없습니다.", "No child items."},
	"Material.Title":    {"재료 물성치 관리", "Material Properties"},
	"Machine.Title":     {"설비 관리", "Machines"},
	"Price.Title":       {"재료 가격 관리", "Material Prices"},
	"Price.AllPeriods":  {"전체 기간", "All periods"},
	"Price.From":        {"시작일", "From"},
	"Price.To":          {"종료일", "To"},
	"Plant.Title":       {"공장 / 지역 관리", "Plants / Regions"},
	"Plant.TabRegion":   {"지역", "Regions"},
	"Plant.TabPlant":    {"공장", "Plants"},
	"Plant.Import":      {"엑셀 업로드", "Import Excel"},
	"Plant.Template":    {"양식 다운로드", "Download template"},
	"Plant.Preview":     {"업로드 미리보기", "Import preview"},
	"Plant.Commit":      {"저장", "Save import"},
	"Plant.Sheet":       {"시트", "Sheet"},
	"Plant.ValidRegion": {"유효", "Valid"},
	"Plant.BadRegion":   {"미등록 지역", "Unknown region"},
	"Config.Title":      {"설정 관리", "Configuration"},
	"User.Title":        {"사용자 관리", "Users"},
	"User.Password":     {"비밀번호", "Password"},
	"User.History":      {"접속 이력", "Access history"},
	"User.Admin":        {"관리자", "Admin"},
	"User.Member":       {"사용자", "User"},
	"User.ExportLog":    {"접속 로그 다운로드", "Export access log"},

	// outcomes
	"Msg.Saved":             {"저장되었습니다.", "Saved."},
	"Msg.Deleted":           {"삭제되었습니다.", "Deleted."},
	"Msg.SaveFailed":        {"저장에 실패했습니다.", "Save failed."},
	"Msg.DeleteFailed":      {"삭제에 실패했습니다.", "Delete failed."},
	"Msg.ConfirmDelete":     {"삭제하시겠습니까?", "Delete this item?"},
	"Msg.NoData":            {"조건에 맞는 데이터가 없습니다.", "No data matches the conditions."},
	"Msg.RequiredFields":    {"필수 항목을 입력해 주세요.", "Please fill in the required fields."},
	"Msg.RequiredIDName":    {"아이디와 이름은 필수입니다.", "User ID and name are required."},
	"Msg.InvalidGUID":       {"GUID 형식이 올바르지 않습니다.", "GUID is not valid."},
	"Msg.DateRange":         {"시작일이 종료일보다 늦습니다.", "Start date is after end date."},
	"Msg.InvalidRegion":     {"등록되지 않은 지역 코드가 {{.Count}}건 있습니다. 계속하시겠습니까?", "{{.Count}} rows reference unknown regions. Continue?"},
	"Msg.ImportDone":        {"{{.Count}}건이 저장되었습니다.", "{{.Count}} rows imported."},
	"Msg.ImportFailed":      {"업로드에 실패했습니다.", "Import failed."},
	"Msg.ConfigMissing":     {"Configuration GUID를 찾을 수 없습니다. ({{.Class}} / {{.Name}})", "Configuration GUID not found ({{.Class}} / {{.Name}})."},
	"Msg.FileRequired":      {"파일을 선택해 주세요.", "Please select a file."},
	"Msg.NoPreview":         {"업로드한 데이터가 없습니다. 다시 업로드해 주세요.", "Nothing to import. Please upload again."},
	"Msg.ExportFailed":      {"다운로드에 실패했습니다.", "Export failed."},
	"Msg.Unexpected":        {"오류가 발생했습니다. 다시 시도해 주세요.", "Something went wrong. Please try again."},
	"Msg.DuplicateUserID":   {"이미 사용 중인 아이디입니다.", "User ID is already taken."},
	"Msg.LanguageChanged":   {"언어가 변경되었습니다.", "Language changed."},
	"Msg.ConfirmationLabel": {"확인 후 계속", "Confirm and continue"},
}

func tableFor(lang Language) []*i18n.Message {
	idx := 0
	if lang == English {
		idx = 1
	}
	messages := make([]*i18n.Message, 0, len(labels))
	for id, pair := range labels {
		messages = append(messages, &i18n.Message{ID: id, Other: pair[idx]})
	}
	return messages
}
