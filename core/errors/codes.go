package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 通用错误 1000-1999
	ErrInvalidParameter  ErrCode = 1001 // 参数错误
	ErrUnauthorized      ErrCode = 1002 // 未授权
	ErrInternalError     ErrCode = 1003 // 内部错误
	ErrNotFound          ErrCode = 1004 // 资源未找到
	ErrAlreadyExists     ErrCode = 1005 // 资源已存在
	ErrOperationFailed   ErrCode = 1006 // 操作失败
	ErrRequestValidation ErrCode = 1007 // 请求校验失败

	// 模型相关 2000-2999
	ErrModelNotFound      ErrCode = 2001 // 模型未找到
	ErrModelConfigInvalid ErrCode = 2002 // 模型配置无效
	ErrEmbeddingFailed    ErrCode = 2003 // Embedding失败
	ErrLLMCallFailed      ErrCode = 2004 // LLM调用失败
	ErrModelNotConfigured ErrCode = 2005 // 模型未配置
	ErrStreamingFailed    ErrCode = 2007 // 流式响应失败
	ErrParseFailed        ErrCode = 2008 // 模型输出解析失败

	// 文件存储 4000-4999
	ErrFileUploadFailed ErrCode = 4005 // 文件上传失败
	ErrFileReadFailed   ErrCode = 4007 // 文件读取失败

	// 向量数据库 5000-5999
	ErrVectorStoreInit     ErrCode = 5001 // 向量库初始化失败
	ErrVectorSearch        ErrCode = 5002 // 向量搜索失败
	ErrVectorInsert        ErrCode = 5003 // 向量插入失败
	ErrVectorStoreNotFound ErrCode = 5005 // 向量库不存在

	// 数据库相关 6000-6999
	ErrDatabaseQuery  ErrCode = 6001 // 数据库查询失败
	ErrDatabaseInsert ErrCode = 6002 // 数据库插入失败
	ErrDatabaseInit   ErrCode = 6005 // 数据库初始化失败
	ErrQueryExecution ErrCode = 6006 // OLAP查询执行失败（两级执行均失败）

	// 检索相关 9000-9999
	ErrRetrievalFailed ErrCode = 9001 // 检索失败
	ErrRewriteFailed   ErrCode = 9002 // 查询重写失败

	// BI助手 10000-10999
	ErrChartFailed          ErrCode = 10001 // 图表生成失败
	ErrFeedbackInconsistent ErrCode = 10002 // 反馈写入部分成功
	ErrExampleBookWrite     ErrCode = 10003 // 示例库写入失败
)

// Category 返回错误码所属分类
func (e ErrCode) Category() Category {
	switch e {
	case ErrInvalidParameter, ErrRequestValidation:
		return CategoryValidation
	case ErrQueryExecution:
		return CategoryExecution
	case ErrDatabaseQuery, ErrDatabaseInsert, ErrDatabaseInit, ErrFeedbackInconsistent, ErrExampleBookWrite,
		ErrFileUploadFailed, ErrFileReadFailed:
		return CategoryPersistence
	case ErrEmbeddingFailed, ErrLLMCallFailed, ErrParseFailed, ErrStreamingFailed, ErrModelNotFound, ErrModelConfigInvalid,
		ErrModelNotConfigured, ErrVectorStoreInit, ErrVectorSearch, ErrVectorInsert, ErrVectorStoreNotFound,
		ErrRetrievalFailed, ErrRewriteFailed, ErrChartFailed:
		return CategoryUpstream
	default:
		return CategoryInternal
	}
}

// HTTPStatusCode 返回错误码对应的HTTP状态码
func (e ErrCode) HTTPStatusCode() int {
	switch {
	case e >= 1001 && e <= 1999:
		// 通用错误
		switch e {
		case ErrInvalidParameter, ErrRequestValidation:
			return 400
		case ErrUnauthorized:
			return 401
		case ErrNotFound:
			return 404
		case ErrAlreadyExists:
			return 409
		default:
			return 500
		}
	case e >= 2000 && e <= 2999:
		// 模型相关错误
		if e == ErrModelNotFound {
			return 404
		}
		return 500
	case e >= 5000 && e <= 5999:
		if e == ErrVectorStoreNotFound {
			return 404
		}
		return 500
	default:
		return 500
	}
}
