package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/glotree/pbb-ledger/internal/certcode"
	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// giftAmountFieldKeys 面额字段键名的历史变体，按优先级排列
var giftAmountFieldKeys = []string{
	"amount",
	"gift_amount",
	"giftamount",
	"gift_certificate_amount",
}

// amountTextPattern 从正文提取金额的兜底模式（形如 $75 或 $75.50）
var amountTextPattern = regexp.MustCompile(`\$\s*([0-9]+(?:\.[0-9]{1,2})?)`)

// ArchiveService 外部档案解析服务。
// 档案记录的字段键名随表单版本漂移过多次，这里集中处理所有历史变体。
type ArchiveService struct {
	inquiryRepo repository.InquiryRepository
	codec       certcode.Config
}

// ArchiveLookup 档案查找结果（含诊断信息）
type ArchiveLookup struct {
	Record       *models.InquiryRecord // 命中的记录，未命中为 nil
	Candidates   []string              // 参与匹配的序列号候选值
	SearchedKeys []string              // 检查过的字段键名
}

// NewArchiveService 创建档案解析服务
func NewArchiveService(inquiryRepo repository.InquiryRepository, codec certcode.Config) *ArchiveService {
	return &ArchiveService{inquiryRepo: inquiryRepo, codec: codec}
}

// FindRecordBySerial 按序列号查找档案记录。
// 先走字段包的结构化精确匹配，未命中再做粗匹配扫描并在内存里逐条确认。
func (s *ArchiveService) FindRecordBySerial(serial int64, entered string) (*ArchiveLookup, error) {
	candidates := s.codec.Candidates(serial, entered)
	lookup := &ArchiveLookup{
		Candidates:   candidates,
		SearchedKeys: s.inquiryRepo.SearchedFieldKeys(),
	}
	if len(candidates) == 0 {
		return lookup, nil
	}

	record, err := s.inquiryRepo.FindBySerialValues(candidates)
	if err != nil {
		return nil, err
	}
	if record != nil {
		lookup.Record = record
		return lookup, nil
	}

	// 粗匹配扫描只做 LIKE 初筛，逐条确认避免误命中
	scanned, err := s.inquiryRepo.ScanByLooseMatch(candidates, 0)
	if err != nil {
		return nil, err
	}
	for idx := range scanned {
		if s.recordMatchesSerial(&scanned[idx], candidates) {
			lookup.Record = &scanned[idx]
			return lookup, nil
		}
	}

	logger.Debugw("archive_record_not_found",
		"serial", serial,
		"candidates", candidates,
		"searched_keys", lookup.SearchedKeys,
	)
	return lookup, nil
}

// ListRecentRecords 按时间倒序返回最近的档案记录
func (s *ArchiveService) ListRecentRecords(limit int) ([]models.InquiryRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	records, _, err := s.inquiryRepo.List(repository.InquiryListFilter{Page: 1, PageSize: limit})
	return records, err
}

// ExtractAmount 从档案记录提取面额。
// 优先读字段包的面额键，其次读旧版元数据，最后从正文兜底扫描 $ 金额。
func (s *ArchiveService) ExtractAmount(record *models.InquiryRecord) (models.Money, bool) {
	if record == nil {
		return models.Money{}, false
	}
	if value, ok := findFieldValue(map[string]interface{}(record.Fields), giftAmountFieldKeys); ok {
		if amount, parsed := parseAmountValue(value); parsed {
			return amount, true
		}
	}
	if bag := parseLegacyMeta(record.Meta); bag != nil {
		if value, ok := findFieldValue(bag, giftAmountFieldKeys); ok {
			if amount, parsed := parseAmountValue(value); parsed {
				return amount, true
			}
		}
	}
	if match := amountTextPattern.FindStringSubmatch(record.Body); len(match) == 2 {
		if amount, parsed := parseAmountValue(match[1]); parsed {
			return amount, true
		}
	}
	return models.Money{}, false
}

// ExtractSerialValue 从档案记录提取序列号原文（审计与对账使用）
func (s *ArchiveService) ExtractSerialValue(record *models.InquiryRecord) string {
	if record == nil {
		return ""
	}
	for _, key := range s.inquiryRepo.SearchedFieldKeys() {
		if value, ok := findFieldValue(map[string]interface{}(record.Fields), []string{key}); ok {
			if text := stringifyFieldValue(value); text != "" {
				return text
			}
		}
	}
	if bag := parseLegacyMeta(record.Meta); bag != nil {
		for _, key := range s.inquiryRepo.SearchedFieldKeys() {
			if value, ok := findFieldValue(bag, []string{key}); ok {
				if text := stringifyFieldValue(value); text != "" {
					return text
				}
			}
		}
	}
	return ""
}

// ExtractField 按字段名提取任意字段原文（收件人、落款等展示用途）。
// 与面额、序列号一样先查字段包再查旧版元数据，键名按归一化形态比对。
func (s *ArchiveService) ExtractField(record *models.InquiryRecord, fieldName string) string {
	if record == nil || strings.TrimSpace(fieldName) == "" {
		return ""
	}
	keys := []string{fieldName}
	if value, ok := findFieldValue(map[string]interface{}(record.Fields), keys); ok {
		if text := stringifyFieldValue(value); text != "" {
			return text
		}
	}
	if bag := parseLegacyMeta(record.Meta); bag != nil {
		if value, ok := findFieldValue(bag, keys); ok {
			if text := stringifyFieldValue(value); text != "" {
				return text
			}
		}
	}
	return ""
}

// RecordByID 按 ID 读取档案记录
func (s *ArchiveService) RecordByID(id uint) (*models.InquiryRecord, error) {
	return s.inquiryRepo.GetByID(id)
}

// recordMatchesSerial 确认记录的序列号字段与候选值之一完全相等
func (s *ArchiveService) recordMatchesSerial(record *models.InquiryRecord, candidates []string) bool {
	extracted := strings.TrimSpace(s.ExtractSerialValue(record))
	if extracted == "" {
		return false
	}
	normalized := s.codec.Normalize(extracted)
	for _, candidate := range candidates {
		if strings.EqualFold(extracted, candidate) || strings.EqualFold(normalized, candidate) {
			return true
		}
	}
	return false
}

// normalizeFieldKey 统一字段键名：小写，非字母数字的连续段折算成单个下划线，
// 首尾的分隔符直接丢弃（"_field_serial_number" 与 "Serial.Number" 都能对上标准键）。
func normalizeFieldKey(key string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// findFieldValue 在字段包里按键名变体查值，嵌套包递归下探，
// 形如 {"value": x} 的包装对象自动拆开。
func findFieldValue(bag map[string]interface{}, keys []string) (interface{}, bool) {
	if len(bag) == 0 {
		return nil, false
	}
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[normalizeFieldKey(key)] = struct{}{}
	}

	for key, value := range bag {
		if _, ok := wanted[normalizeFieldKey(key)]; ok {
			return unwrapFieldValue(value), true
		}
	}
	for _, value := range bag {
		nested, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		if found, ok := findFieldValue(nested, keys); ok {
			return found, true
		}
	}
	return nil, false
}

func unwrapFieldValue(value interface{}) interface{} {
	nested, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	for key, inner := range nested {
		if normalizeFieldKey(key) == "value" {
			return unwrapFieldValue(inner)
		}
	}
	return value
}

func stringifyFieldValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return decimal.NewFromFloat(v).String()
	case json.Number:
		return v.String()
	case int:
		return decimal.NewFromInt(int64(v)).String()
	case int64:
		return decimal.NewFromInt(v).String()
	default:
		return ""
	}
}

func parseAmountValue(value interface{}) (models.Money, bool) {
	text := stringifyFieldValue(value)
	if text == "" {
		return models.Money{}, false
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "$"))
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)
	parsed, err := decimal.NewFromString(text)
	if err != nil || !parsed.IsPositive() {
		return models.Money{}, false
	}
	return models.NewMoneyFromDecimal(parsed), true
}

// parseLegacyMeta 解析旧版元数据文本（迁移时统一转成了 JSON 对象）
func parseLegacyMeta(meta string) map[string]interface{} {
	meta = strings.TrimSpace(meta)
	if meta == "" || !strings.HasPrefix(meta, "{") {
		return nil
	}
	var bag map[string]interface{}
	if err := json.Unmarshal([]byte(meta), &bag); err != nil {
		return nil
	}
	return bag
}
