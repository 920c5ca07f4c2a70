package service

import (
	"strings"
	"time"

	"github.com/glotree/pbb-ledger/internal/certcode"
	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/repository"
)

// CertificateService 礼品券余额服务
type CertificateService struct {
	certRepo   repository.CertificateRepository
	archiveSvc *ArchiveService
	codec      certcode.Config
	currency   string
}

// CertificateResolution 券码解析结果（含未命中时的诊断信息）
type CertificateResolution struct {
	Balance      *models.CertificateBalance
	Created      bool     // 本次是否新建了余额记录
	CertCode     string   // 规范券码
	SerialRaw    int64    // 原始序列号
	Candidates   []string // 档案检索候选值
	SearchedKeys []string // 档案检索检查过的字段键名
}

// NewCertificateService 创建礼品券余额服务
func NewCertificateService(
	certRepo repository.CertificateRepository,
	archiveSvc *ArchiveService,
	codec certcode.Config,
	currency string,
) *CertificateService {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return &CertificateService{
		certRepo:   certRepo,
		archiveSvc: archiveSvc,
		codec:      codec,
		currency:   currency,
	}
}

// Codec 返回编码配置
func (s *CertificateService) Codec() certcode.Config {
	return s.codec
}

// ResolveOrCreate 解析券码并返回余额记录，首次兑换时从外部档案取面额惰性建账。
// 同一序列号的任意写法（PBB-00055、pbb55、55）都会落到同一行。
func (s *CertificateService) ResolveOrCreate(entered string) (*CertificateResolution, error) {
	serial := s.codec.ToSerial(entered)
	if serial <= 0 {
		return nil, ErrCertificateCodeInvalid
	}
	code := s.codec.ToCode(serial)
	resolution := &CertificateResolution{CertCode: code, SerialRaw: serial}

	balance, err := s.certRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		resolution.Balance = balance
		return resolution, nil
	}

	lookup, err := s.archiveSvc.FindRecordBySerial(serial, entered)
	if err != nil {
		return nil, err
	}
	resolution.Candidates = lookup.Candidates
	resolution.SearchedKeys = lookup.SearchedKeys
	if lookup.Record == nil {
		return resolution, ErrCertificateNotFound
	}

	amount, ok := s.archiveSvc.ExtractAmount(lookup.Record)
	if !ok {
		logger.Warnw("archive_amount_unreadable",
			"cert_code", code,
			"inquiry_id", lookup.Record.ID,
		)
		return resolution, ErrArchiveAmountMissing
	}

	now := time.Now()
	inquiryID := lookup.Record.ID
	balance = &models.CertificateBalance{
		CertCode:        code,
		SerialRaw:       serial,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		Currency:        s.currency,
		InquiryID:       &inquiryID,
		Status:          constants.CertificateStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.certRepo.Create(balance); err != nil {
		// 并发首次兑换时唯一索引会拒绝第二次插入，回读既有记录即可
		existing, queryErr := s.certRepo.GetByCode(code)
		if queryErr == nil && existing != nil {
			resolution.Balance = existing
			return resolution, nil
		}
		return resolution, ErrCertificateCreateFailed
	}
	logger.Infow("certificate_balance_created",
		"cert_code", code,
		"serial", serial,
		"amount", amount.String(),
		"inquiry_id", inquiryID,
	)
	resolution.Balance = balance
	resolution.Created = true
	return resolution, nil
}

// GetByCode 按规范券码查询余额记录（不触发建账）
func (s *CertificateService) GetByCode(code string) (*models.CertificateBalance, error) {
	serial := s.codec.ToSerial(code)
	if serial <= 0 {
		return nil, ErrCertificateCodeInvalid
	}
	return s.certRepo.GetByCode(s.codec.ToCode(serial))
}

// List 查询余额列表
func (s *CertificateService) List(filter repository.CertificateListFilter) ([]models.CertificateBalance, int64, error) {
	return s.certRepo.List(filter)
}

// ArchiveOnlyEntry 档案里存在但尚未建账的序列号条目
type ArchiveOnlyEntry struct {
	CertCode    string       `json:"cert_code"`    // 规范券码
	SerialRaw   int64        `json:"serial_raw"`   // 原始序列号
	Amount      models.Money `json:"amount"`       // 现场解析出的面额
	AmountKnown bool         `json:"amount_known"` // 面额是否可读
	InquiryID   uint         `json:"inquiry_id"`   // 档案记录 ID
	ReceivedAt  time.Time    `json:"received_at"`  // 档案记录时间
}

// ListArchiveOnly 扫描最近的档案记录，返回尚未建账的序列号条目。
// 序列号与面额都是现场解析，不会触发建账。
func (s *CertificateService) ListArchiveOnly(limit int) ([]ArchiveOnlyEntry, error) {
	records, err := s.archiveSvc.ListRecentRecords(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]ArchiveOnlyEntry, 0, len(records))
	seen := make(map[string]bool, len(records))
	for idx := range records {
		record := &records[idx]
		serialValue := s.archiveSvc.ExtractSerialValue(record)
		serial := s.codec.ToSerial(serialValue)
		if serial <= 0 {
			continue
		}
		code := s.codec.ToCode(serial)
		if seen[code] {
			continue
		}
		seen[code] = true

		existing, err := s.certRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		amount, ok := s.archiveSvc.ExtractAmount(record)
		entries = append(entries, ArchiveOnlyEntry{
			CertCode:    code,
			SerialRaw:   serial,
			Amount:      amount,
			AmountKnown: ok,
			InquiryID:   record.ID,
			ReceivedAt:  record.CreatedAt,
		})
	}
	return entries, nil
}
